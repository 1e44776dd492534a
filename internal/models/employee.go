package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee is a person that can be the subject of a feedback campaign.
// Assessors are not required to be employees; external assessors are known
// only by the email on their access token.
type Employee struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	FullName   string  `json:"full_name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Email      string  `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	JobTitle   *string `json:"job_title" gorm:"size:120" validate:"omitempty,max=120"`
	Department *string `json:"department" gorm:"size:120" validate:"omitempty,max=120"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
