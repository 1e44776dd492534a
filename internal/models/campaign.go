package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignArchived  CampaignStatus = "archived"
)

// Campaign is one 360-degree feedback cycle: a target employee, a question
// set and the submissions collected from the invited assessors.
type Campaign struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Title            string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description      *string        `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status           CampaignStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft active completed archived"`
	TargetEmployeeID uint           `json:"target_employee_id" gorm:"not null;index" validate:"required"`
	Questions        datatypes.JSON `json:"questions" gorm:"type:jsonb"` // []Question, frozen once the campaign is active
	Deadline         *time.Time     `json:"deadline"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	TargetEmployee Employee     `json:"target_employee" gorm:"foreignKey:TargetEmployeeID"`
	Submissions    []Submission `json:"submissions,omitempty" gorm:"foreignKey:CampaignID"`

	// Computed fields (not stored)
	SubmissionCount int `json:"submission_count" gorm:"-"`
	CompletedCount  int `json:"completed_count" gorm:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// QuestionSet decodes the stored JSONB question list, ordered as authored.
func (c *Campaign) QuestionSet() ([]Question, error) {
	if len(c.Questions) == 0 {
		return nil, nil
	}
	var questions []Question
	if err := json.Unmarshal(c.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
