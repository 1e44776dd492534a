package repositories

import (
	"context"
	"errors"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type CampaignFilters struct {
	Status           *models.CampaignStatus `json:"status"`
	CreatedBy        *string                `json:"created_by"`
	TargetEmployeeID *uint                  `json:"target_employee_id"`
	Limit            int                    `json:"limit"`
	Offset           int                    `json:"offset"`
	SortBy           string                 `json:"sort_by"`    // "created_at", "title", "deadline"
	SortOrder        string                 `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	CampaignID    *uint                    `json:"campaign_id"`
	Status        *models.SubmissionStatus `json:"status"`
	AssessorEmail *string                  `json:"assessor_email"`
	Bypassed      *bool                    `json:"bypassed"`
	Limit         int                      `json:"limit"`
	Offset        int                      `json:"offset"`
}

type EmployeeFilters struct {
	Department *string `json:"department"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Campaign, error)
	GetByTitleAndCreator(ctx context.Context, title string, creatorID string) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters CampaignFilters) ([]*models.Campaign, int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetByCampaignAndEmail(ctx context.Context, campaignID uint, email string) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, id uint) error
	GetByCampaign(ctx context.Context, campaignID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	CountByCampaign(ctx context.Context, campaignID uint, status *models.SubmissionStatus) (int64, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	GetByToken(ctx context.Context, token string) (*models.AccessToken, error)
	GetByTokenWithSubmission(ctx context.Context, token string) (*models.AccessToken, error)
	DeleteBySubmission(ctx context.Context, submissionID uint) error
	IncrementUse(ctx context.Context, token string) error
}

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	List(ctx context.Context, filters EmployeeFilters) ([]*models.Employee, int64, error)
}

// Repository aggregates all repositories behind one dependency.
type Repository interface {
	Campaign() CampaignRepository
	Submission() SubmissionRepository
	Token() TokenRepository
	Employee() EmployeeRepository

	// WithTx runs fn inside one database transaction; the Repository passed
	// to fn operates on that transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
