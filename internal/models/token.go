package models

import "time"

type AssessorRelation string

const (
	RelationPeer         AssessorRelation = "peer"
	RelationManager      AssessorRelation = "manager"
	RelationDirectReport AssessorRelation = "direct_report"
	RelationSelf         AssessorRelation = "self"
	RelationOther        AssessorRelation = "other"
)

// AccessToken grants one assessor access to one submission. Tokens are the
// only credential assessors hold; resetting a token invalidates all previous
// tokens for the same submission.
type AccessToken struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Token        string           `json:"token" gorm:"uniqueIndex;not null;size:64"`
	SubmissionID uint             `json:"submission_id" gorm:"not null;index"`
	Relation     AssessorRelation `json:"relation" gorm:"not null;size:20" validate:"required,assessor_relation"`
	ExpiresAt    time.Time        `json:"expires_at"`
	UsedCount    int              `json:"used_count" gorm:"default:0"`
	CreatedAt    time.Time        `json:"created_at"`

	Submission Submission `json:"-" gorm:"foreignKey:SubmissionID"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

func (t *AccessToken) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}
