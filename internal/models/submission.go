package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionStarted   SubmissionStatus = "started"
	SubmissionCompleted SubmissionStatus = "completed"
)

// Response is one assessor answer, keyed by question ID. At most one response
// exists per question; rating and text may each be absent.
type Response struct {
	QuestionID string `json:"question_id" validate:"required"`
	Rating     *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Text       string `json:"text,omitempty"`
}

// Submission is one assessor's feedback record for a campaign. It is created
// when the assessor is invited and becomes terminal once completed; no
// further mutation is accepted for that session.
type Submission struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	CampaignID       uint             `json:"campaign_id" gorm:"not null;index"`
	TargetEmployeeID uint             `json:"target_employee_id" gorm:"not null;index"`
	AssessorEmail    string           `json:"assessor_email" gorm:"not null;size:255;index" validate:"required,email"`
	Relation         AssessorRelation `json:"relation" gorm:"not null;size:20" validate:"required,assessor_relation"`
	Status           SubmissionStatus `json:"status" gorm:"default:pending;index" validate:"omitempty,oneof=pending started completed"`

	Responses      datatypes.JSON `json:"responses" gorm:"type:jsonb"`       // []Response, final answers
	DraftResponses datatypes.JSON `json:"draft_responses" gorm:"type:jsonb"` // []Response, auto-save
	Comments       *string        `json:"comments" gorm:"type:text"`

	// AI gating outcome. A completed submission with a non-"good" stored
	// quality must carry BypassedAIRecommendations = true.
	BypassedAIRecommendations bool           `json:"bypassed_ai_recommendations" gorm:"default:false"`
	AIEvaluationResults       datatypes.JSON `json:"ai_evaluation_results" gorm:"type:jsonb"` // *AIEvaluationResult

	LastSavedAt *time.Time `json:"last_saved_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Campaign Campaign `json:"-" gorm:"foreignKey:CampaignID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// FinalResponses decodes the stored final answers.
func (s *Submission) FinalResponses() ([]Response, error) {
	return decodeResponses(s.Responses)
}

// Draft decodes the stored draft answers.
func (s *Submission) Draft() ([]Response, error) {
	return decodeResponses(s.DraftResponses)
}

func decodeResponses(raw datatypes.JSON) ([]Response, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var responses []Response
	if err := json.Unmarshal(raw, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}
