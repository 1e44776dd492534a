package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pzkpfw44/Pulse360-sub000/internal/events"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

const defaultTokenLifetime = 30 * 24 * time.Hour

// ===== REQUEST / RESPONSE TYPES =====

type CreateCampaignRequest struct {
	Title            string            `json:"title" validate:"required,min=1,max=200"`
	Description      *string           `json:"description" validate:"omitempty,max=1000"`
	TargetEmployeeID uint              `json:"target_employee_id" validate:"required"`
	Questions        []models.Question `json:"questions" validate:"required,min=1,dive"`
	Deadline         *time.Time        `json:"deadline"`
}

type UpdateCampaignRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Questions   []models.Question `json:"questions" validate:"omitempty,min=1,dive"`
	Deadline    *time.Time        `json:"deadline"`
}

type AddAssessorRequest struct {
	Email    string                  `json:"email" validate:"required,email"`
	Relation models.AssessorRelation `json:"relation" validate:"required,assessor_relation"`
}

// AssessorInvite is returned when an assessor is added or their token is
// reset; the token is only surfaced here.
type AssessorInvite struct {
	SubmissionID uint                    `json:"submission_id"`
	Email        string                  `json:"email"`
	Relation     models.AssessorRelation `json:"relation"`
	Token        string                  `json:"token"`
	ExpiresAt    time.Time               `json:"expires_at"`
}

// ===== SERVICE =====

type CampaignService interface {
	Create(ctx context.Context, req *CreateCampaignRequest, creatorID string) (*models.Campaign, error)
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error)
	Update(ctx context.Context, id uint, req *UpdateCampaignRequest) (*models.Campaign, error)
	Delete(ctx context.Context, id uint) error
	Activate(ctx context.Context, id uint) (*models.Campaign, error)
	Complete(ctx context.Context, id uint) (*models.Campaign, error)

	AddAssessor(ctx context.Context, campaignID uint, req *AddAssessorRequest) (*AssessorInvite, error)
	ResetToken(ctx context.Context, campaignID uint, submissionID uint) (*AssessorInvite, error)
	ListSubmissions(ctx context.Context, campaignID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
}

type campaignService struct {
	repo       repositories.Repository
	validation *ValidationService
	validator  *utils.Validator
	publisher  events.EventPublisher
	logger     *slog.Logger
}

func NewCampaignService(
	repo repositories.Repository,
	validation *ValidationService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) CampaignService {
	return &campaignService{
		repo:       repo,
		validation: validation,
		validator:  validator,
		publisher:  publisher,
		logger:     logger,
	}
}

// ===== CAMPAIGN CRUD =====

func (s *campaignService) Create(ctx context.Context, req *CreateCampaignRequest, creatorID string) (*models.Campaign, error) {
	s.logger.Info("Creating campaign", "title", req.Title, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if errs := s.validation.ValidateCampaignCreate(req.Title, req.Questions, req.Deadline); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Employee().GetByID(ctx, req.TargetEmployeeID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to look up target employee: %w", err)
	}

	existing, err := s.repo.Campaign().GetByTitleAndCreator(ctx, req.Title, creatorID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if existing != nil {
		return nil, ErrCampaignDuplicateTitle
	}

	rawQuestions, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	campaign := &models.Campaign{
		Title:            req.Title,
		Description:      req.Description,
		Status:           models.CampaignDraft,
		TargetEmployeeID: req.TargetEmployeeID,
		Questions:        datatypes.JSON(rawQuestions),
		Deadline:         req.Deadline,
		CreatedBy:        creatorID,
	}

	if err := s.repo.Campaign().Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("Campaign created", "campaign_id", campaign.ID)
	return s.GetByID(ctx, campaign.ID)
}

func (s *campaignService) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.repo.Campaign().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	if err := s.attachCounts(ctx, campaign); err != nil {
		s.logger.Warn("Failed to compute submission counts", "campaign_id", id, "error", err)
	}

	return campaign, nil
}

func (s *campaignService) List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error) {
	campaigns, total, err := s.repo.Campaign().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}

	for _, c := range campaigns {
		if err := s.attachCounts(ctx, c); err != nil {
			s.logger.Warn("Failed to compute submission counts", "campaign_id", c.ID, "error", err)
		}
	}

	return campaigns, total, nil
}

func (s *campaignService) Update(ctx context.Context, id uint, req *UpdateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	campaign, err := s.repo.Campaign().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	// The question set freezes once assessors can see it.
	if campaign.Status != models.CampaignDraft {
		return nil, ErrCampaignNotEditable
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != campaign.Title {
		existing, err := s.repo.Campaign().GetByTitleAndCreator(ctx, *req.Title, campaign.CreatedBy)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if existing != nil && existing.ID != campaign.ID {
			return nil, ErrCampaignDuplicateTitle
		}
		campaign.Title = *req.Title
	}
	if req.Description != nil {
		campaign.Description = req.Description
	}
	if req.Deadline != nil {
		campaign.Deadline = req.Deadline
	}
	if req.Questions != nil {
		if errs := s.validation.ValidateCampaignCreate(campaign.Title, req.Questions, campaign.Deadline); len(errs) > 0 {
			return nil, errs
		}
		rawQuestions, err := json.Marshal(req.Questions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode questions: %w", err)
		}
		campaign.Questions = datatypes.JSON(rawQuestions)
	}

	if err := s.repo.Campaign().Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	return s.GetByID(ctx, campaign.ID)
}

func (s *campaignService) Delete(ctx context.Context, id uint) error {
	campaign, err := s.repo.Campaign().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("failed to get campaign: %w", err)
	}

	completed, err := s.repo.Submission().CountByCampaign(ctx, id, statusPtr(models.SubmissionCompleted))
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	if completed > 0 {
		return NewBusinessRuleError("campaign_has_feedback",
			"campaigns with collected feedback can only be archived",
			map[string]interface{}{"campaign_id": id, "completed": completed})
	}

	if err := s.repo.Campaign().Delete(ctx, campaign.ID); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	s.logger.Info("Campaign deleted", "campaign_id", id)
	return nil
}

// ===== STATUS TRANSITIONS =====

func (s *campaignService) Activate(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.repo.Campaign().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	if campaign.Status != models.CampaignDraft {
		return nil, NewBusinessRuleError("invalid_status_transition",
			"only draft campaigns can be activated",
			map[string]interface{}{"status": campaign.Status})
	}

	questions, err := campaign.QuestionSet()
	if err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrCampaignNoQuestions
	}
	if campaign.Deadline != nil && campaign.Deadline.Before(time.Now()) {
		return nil, ErrCampaignPastDeadline
	}

	campaign.Status = models.CampaignActive
	if err := s.repo.Campaign().Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to activate campaign: %w", err)
	}

	total, _ := s.repo.Submission().CountByCampaign(ctx, id, nil)
	s.publish(ctx, events.NewFeedbackEvent(events.EventCampaignActivated, events.CampaignActivatedEvent{
		CampaignID:    campaign.ID,
		CampaignTitle: campaign.Title,
		TargetName:    campaign.TargetEmployee.FullName,
		Deadline:      campaign.Deadline,
		AssessorCount: int(total),
	}))

	s.logger.Info("Campaign activated", "campaign_id", id)
	return s.GetByID(ctx, id)
}

func (s *campaignService) Complete(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.repo.Campaign().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	if campaign.Status != models.CampaignActive {
		return nil, NewBusinessRuleError("invalid_status_transition",
			"only active campaigns can be completed",
			map[string]interface{}{"status": campaign.Status})
	}

	campaign.Status = models.CampaignCompleted
	if err := s.repo.Campaign().Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to complete campaign: %w", err)
	}

	s.publish(ctx, events.NewFeedbackEvent(events.EventCampaignCompleted, events.CampaignActivatedEvent{
		CampaignID:    campaign.ID,
		CampaignTitle: campaign.Title,
	}))

	s.logger.Info("Campaign completed", "campaign_id", id)
	return s.GetByID(ctx, id)
}

// ===== ASSESSORS AND TOKENS =====

func (s *campaignService) AddAssessor(ctx context.Context, campaignID uint, req *AddAssessorRequest) (*AssessorInvite, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	campaign, err := s.repo.Campaign().GetByID(ctx, campaignID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	if campaign.Status != models.CampaignDraft && campaign.Status != models.CampaignActive {
		return nil, ErrCampaignNotActive
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.Submission().GetByCampaignAndEmail(ctx, campaignID, email)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing assessor: %w", err)
	}
	if existing != nil {
		return nil, ErrAssessorExists
	}

	expiresAt := time.Now().Add(defaultTokenLifetime)
	if campaign.Deadline != nil && campaign.Deadline.Before(expiresAt) {
		expiresAt = *campaign.Deadline
	}

	var invite *AssessorInvite
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		submission := &models.Submission{
			CampaignID:       campaignID,
			TargetEmployeeID: campaign.TargetEmployeeID,
			AssessorEmail:    email,
			Relation:         req.Relation,
			Status:           models.SubmissionPending,
		}
		if err := tx.Submission().Create(ctx, submission); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		token := &models.AccessToken{
			Token:        uuid.NewString(),
			SubmissionID: submission.ID,
			Relation:     req.Relation,
			ExpiresAt:    expiresAt,
		}
		if err := tx.Token().Create(ctx, token); err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}

		invite = &AssessorInvite{
			SubmissionID: submission.ID,
			Email:        email,
			Relation:     req.Relation,
			Token:        token.Token,
			ExpiresAt:    expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewFeedbackEvent(events.EventTokenIssued, events.TokenIssuedEvent{
		SubmissionID:  invite.SubmissionID,
		CampaignID:    campaignID,
		AssessorEmail: email,
		ExpiresAt:     expiresAt,
	}))

	s.logger.Info("Assessor added",
		"campaign_id", campaignID,
		"submission_id", invite.SubmissionID,
		"relation", req.Relation)
	return invite, nil
}

// ResetToken revokes every token for a submission and issues a fresh one.
func (s *campaignService) ResetToken(ctx context.Context, campaignID uint, submissionID uint) (*AssessorInvite, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission.CampaignID != campaignID {
		return nil, ErrSubmissionNotFound
	}
	if submission.Status == models.SubmissionCompleted {
		return nil, ErrAlreadySubmitted
	}

	expiresAt := time.Now().Add(defaultTokenLifetime)
	var invite *AssessorInvite
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := tx.Token().DeleteBySubmission(ctx, submissionID); err != nil {
			return fmt.Errorf("failed to revoke tokens: %w", err)
		}

		token := &models.AccessToken{
			Token:        uuid.NewString(),
			SubmissionID: submissionID,
			Relation:     submission.Relation,
			ExpiresAt:    expiresAt,
		}
		if err := tx.Token().Create(ctx, token); err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}

		invite = &AssessorInvite{
			SubmissionID: submissionID,
			Email:        submission.AssessorEmail,
			Relation:     submission.Relation,
			Token:        token.Token,
			ExpiresAt:    expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewFeedbackEvent(events.EventTokenReset, events.TokenIssuedEvent{
		SubmissionID:  submissionID,
		CampaignID:    campaignID,
		AssessorEmail: submission.AssessorEmail,
		ExpiresAt:     expiresAt,
		Reset:         true,
	}))

	s.logger.Info("Access token reset", "submission_id", submissionID)
	return invite, nil
}

func (s *campaignService) ListSubmissions(ctx context.Context, campaignID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	if _, err := s.repo.Campaign().GetByID(ctx, campaignID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrCampaignNotFound
		}
		return nil, 0, fmt.Errorf("failed to get campaign: %w", err)
	}

	submissions, total, err := s.repo.Submission().GetByCampaign(ctx, campaignID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, total, nil
}

// ===== HELPERS =====

func (s *campaignService) attachCounts(ctx context.Context, campaign *models.Campaign) error {
	total, err := s.repo.Submission().CountByCampaign(ctx, campaign.ID, nil)
	if err != nil {
		return err
	}
	completed, err := s.repo.Submission().CountByCampaign(ctx, campaign.ID, statusPtr(models.SubmissionCompleted))
	if err != nil {
		return err
	}
	campaign.SubmissionCount = int(total)
	campaign.CompletedCount = int(completed)
	return nil
}

func (s *campaignService) publish(ctx context.Context, event *events.FeedbackEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFeedbackEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func statusPtr(s models.SubmissionStatus) *models.SubmissionStatus {
	return &s
}
