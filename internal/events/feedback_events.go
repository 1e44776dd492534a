package events

import (
	"time"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

// EventType represents different types of feedback events
type EventType string

const (
	// Campaign events
	EventCampaignActivated EventType = "campaign.activated"
	EventCampaignCompleted EventType = "campaign.completed"

	// Submission events
	EventFeedbackStarted   EventType = "feedback.started"
	EventFeedbackSubmitted EventType = "feedback.submitted"

	// Token events
	EventTokenIssued EventType = "token.issued"
	EventTokenReset  EventType = "token.reset"
)

// FeedbackEvent is the base event structure published to the notification
// topic.
type FeedbackEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type CampaignActivatedEvent struct {
	CampaignID    uint       `json:"campaign_id"`
	CampaignTitle string     `json:"campaign_title"`
	TargetName    string     `json:"target_name"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	AssessorCount int        `json:"assessor_count"`
}

type FeedbackSubmittedEvent struct {
	SubmissionID  uint           `json:"submission_id"`
	CampaignID    uint           `json:"campaign_id"`
	AssessorEmail string         `json:"assessor_email"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	Bypassed      bool           `json:"bypassed"`
	AIQuality     models.Quality `json:"ai_quality,omitempty"`
}

type TokenIssuedEvent struct {
	SubmissionID  uint      `json:"submission_id"`
	CampaignID    uint      `json:"campaign_id"`
	AssessorEmail string    `json:"assessor_email"`
	ExpiresAt     time.Time `json:"expires_at"`
	Reset         bool      `json:"reset"`
}
