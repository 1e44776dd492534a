package postgres

import (
	"context"
	"fmt"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"gorm.io/gorm"
)

type TokenPostgreSQL struct {
	db *gorm.DB
}

func NewTokenPostgreSQL(db *gorm.DB) repositories.TokenRepository {
	return &TokenPostgreSQL{db: db}
}

func (t *TokenPostgreSQL) Create(ctx context.Context, token *models.AccessToken) error {
	if err := t.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}
	return nil
}

func (t *TokenPostgreSQL) GetByToken(ctx context.Context, token string) (*models.AccessToken, error) {
	var accessToken models.AccessToken
	err := t.db.WithContext(ctx).
		Where("token = ?", token).
		First(&accessToken).Error
	if err != nil {
		return nil, err
	}
	return &accessToken, nil
}

func (t *TokenPostgreSQL) GetByTokenWithSubmission(ctx context.Context, token string) (*models.AccessToken, error) {
	var accessToken models.AccessToken
	err := t.db.WithContext(ctx).
		Preload("Submission").
		Where("token = ?", token).
		First(&accessToken).Error
	if err != nil {
		return nil, err
	}
	return &accessToken, nil
}

func (t *TokenPostgreSQL) DeleteBySubmission(ctx context.Context, submissionID uint) error {
	err := t.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Delete(&models.AccessToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete access tokens: %w", err)
	}
	return nil
}

func (t *TokenPostgreSQL) IncrementUse(ctx context.Context, token string) error {
	err := t.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("token = ?", token).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment token use count: %w", err)
	}
	return nil
}
