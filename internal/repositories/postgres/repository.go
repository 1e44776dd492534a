package postgres

import (
	"context"

	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"gorm.io/gorm"
)

// GormRepository bundles the gorm-backed repositories behind the aggregate
// Repository interface.
type GormRepository struct {
	db         *gorm.DB
	campaign   repositories.CampaignRepository
	submission repositories.SubmissionRepository
	token      repositories.TokenRepository
	employee   repositories.EmployeeRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &GormRepository{
		db:         db,
		campaign:   NewCampaignPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		token:      NewTokenPostgreSQL(db),
		employee:   NewEmployeePostgreSQL(db),
	}
}

func (r *GormRepository) Campaign() repositories.CampaignRepository     { return r.campaign }
func (r *GormRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *GormRepository) Token() repositories.TokenRepository           { return r.token }
func (r *GormRepository) Employee() repositories.EmployeeRepository     { return r.employee }

// WithTx runs fn against a Repository bound to a single transaction.
func (r *GormRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
