package postgres

import (
	"context"
	"fmt"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"gorm.io/gorm"
)

type CampaignPostgreSQL struct {
	db *gorm.DB
}

func NewCampaignPostgreSQL(db *gorm.DB) repositories.CampaignRepository {
	return &CampaignPostgreSQL{db: db}
}

func (c *CampaignPostgreSQL) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.Status == "" {
		campaign.Status = models.CampaignDraft
	}
	if err := c.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (c *CampaignPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := c.db.WithContext(ctx).
		Preload("TargetEmployee").
		First(&campaign, id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetByIDWithDetails loads the campaign together with its submissions and
// fills the computed counters.
func (c *CampaignPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := c.db.WithContext(ctx).
		Preload("TargetEmployee").
		Preload("Submissions").
		First(&campaign, id).Error
	if err != nil {
		return nil, err
	}

	campaign.SubmissionCount = len(campaign.Submissions)
	for _, sub := range campaign.Submissions {
		if sub.Status == models.SubmissionCompleted {
			campaign.CompletedCount++
		}
	}
	return &campaign, nil
}

func (c *CampaignPostgreSQL) GetByTitleAndCreator(ctx context.Context, title string, creatorID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := c.db.WithContext(ctx).
		Where("title = ? AND created_by = ?", title, creatorID).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (c *CampaignPostgreSQL) Update(ctx context.Context, campaign *models.Campaign) error {
	if err := c.db.WithContext(ctx).Save(campaign).Error; err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

func (c *CampaignPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := c.db.WithContext(ctx).Delete(&models.Campaign{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

func (c *CampaignPostgreSQL) List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Campaign{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.TargetEmployeeID != nil {
		query = query.Where("target_employee_id = ?", *filters.TargetEmployeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "title": true, "deadline": true,
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	var campaigns []*models.Campaign
	if err := query.Preload("TargetEmployee").Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, total, nil
}
