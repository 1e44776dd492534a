package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzkpfw44/Pulse360-sub000/internal/events"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

type campaignFixture struct {
	repo      *fakeRepo
	publisher *events.MockEventPublisher
	service   CampaignService
	employee  *models.Employee
}

func newCampaignFixture(t *testing.T) *campaignFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newFakeRepo()

	employee := &models.Employee{FullName: "Dana Reyes", Email: "dana@example.com"}
	require.NoError(t, repo.Employee().Create(context.Background(), employee))

	publisher := events.NewMockEventPublisher(logger)
	service := NewCampaignService(repo, NewValidationService(), publisher, logger, utils.NewValidator())

	return &campaignFixture{
		repo:      repo,
		publisher: publisher,
		service:   service,
		employee:  employee,
	}
}

func (fx *campaignFixture) createRequest() *CreateCampaignRequest {
	deadline := time.Now().Add(14 * 24 * time.Hour)
	return &CreateCampaignRequest{
		Title:            "Q3 Review",
		TargetEmployeeID: fx.employee.ID,
		Questions: []models.Question{
			{ID: "q1", Text: "Rate their communication", Type: models.QuestionRating, Required: true, Order: 1},
			{ID: "q2", Text: "Describe their strengths", Type: models.QuestionOpenEnded, Required: true, Order: 2},
		},
		Deadline: &deadline,
	}
}

func TestCampaignService_Create(t *testing.T) {
	t.Run("creates a draft campaign", func(t *testing.T) {
		fx := newCampaignFixture(t)

		campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
		require.NoError(t, err)

		assert.Equal(t, models.CampaignDraft, campaign.Status)
		assert.Equal(t, "admin-1", campaign.CreatedBy)
		questions, err := campaign.QuestionSet()
		require.NoError(t, err)
		assert.Len(t, questions, 2)
	})

	t.Run("rejects a duplicate title per creator", func(t *testing.T) {
		fx := newCampaignFixture(t)

		_, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
		require.NoError(t, err)

		_, err = fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
		assert.ErrorIs(t, err, ErrCampaignDuplicateTitle)

		// A different creator may reuse the title.
		_, err = fx.service.Create(context.Background(), fx.createRequest(), "admin-2")
		assert.NoError(t, err)
	})

	t.Run("rejects an unknown target employee", func(t *testing.T) {
		fx := newCampaignFixture(t)
		req := fx.createRequest()
		req.TargetEmployeeID = 999

		_, err := fx.service.Create(context.Background(), req, "admin-1")
		assert.ErrorIs(t, err, ErrEmployeeNotFound)
	})
}

func TestCampaignService_Activate(t *testing.T) {
	t.Run("activates a draft and publishes an event", func(t *testing.T) {
		fx := newCampaignFixture(t)
		campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
		require.NoError(t, err)

		activated, err := fx.service.Activate(context.Background(), campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CampaignActive, activated.Status)

		published := fx.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventCampaignActivated, published[0].Type)
	})

	t.Run("refuses a second activation", func(t *testing.T) {
		fx := newCampaignFixture(t)
		campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
		require.NoError(t, err)
		_, err = fx.service.Activate(context.Background(), campaign.ID)
		require.NoError(t, err)

		_, err = fx.service.Activate(context.Background(), campaign.ID)
		var bre *BusinessRuleError
		assert.ErrorAs(t, err, &bre)
	})

	t.Run("refuses a past deadline", func(t *testing.T) {
		fx := newCampaignFixture(t)
		campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
		require.NoError(t, err)

		past := time.Now().Add(-time.Hour)
		stored := fx.repo.campaigns[campaign.ID]
		stored.Deadline = &past

		_, err = fx.service.Activate(context.Background(), campaign.ID)
		assert.ErrorIs(t, err, ErrCampaignPastDeadline)
	})
}

func TestCampaignService_Update(t *testing.T) {
	fx := newCampaignFixture(t)
	campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
	require.NoError(t, err)

	title := "Q3 Review (final)"
	updated, err := fx.service.Update(context.Background(), campaign.ID, &UpdateCampaignRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	// The question set freezes once the campaign is active.
	_, err = fx.service.Activate(context.Background(), campaign.ID)
	require.NoError(t, err)
	_, err = fx.service.Update(context.Background(), campaign.ID, &UpdateCampaignRequest{Title: &title})
	assert.ErrorIs(t, err, ErrCampaignNotEditable)
}

func TestCampaignService_AddAssessor(t *testing.T) {
	fx := newCampaignFixture(t)
	campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
	require.NoError(t, err)
	_, err = fx.service.Activate(context.Background(), campaign.ID)
	require.NoError(t, err)

	invite, err := fx.service.AddAssessor(context.Background(), campaign.ID, &AddAssessorRequest{
		Email:    "Peer@Example.com",
		Relation: models.RelationPeer,
	})
	require.NoError(t, err)

	assert.Equal(t, "peer@example.com", invite.Email, "email is normalized")
	assert.NotEmpty(t, invite.Token)
	// Token life is capped at the campaign deadline.
	stored := fx.repo.campaigns[campaign.ID]
	assert.True(t, !invite.ExpiresAt.After(*stored.Deadline))

	_, err = fx.service.AddAssessor(context.Background(), campaign.ID, &AddAssessorRequest{
		Email:    "peer@example.com",
		Relation: models.RelationManager,
	})
	assert.ErrorIs(t, err, ErrAssessorExists)
}

func TestCampaignService_ResetToken(t *testing.T) {
	fx := newCampaignFixture(t)
	campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
	require.NoError(t, err)
	_, err = fx.service.Activate(context.Background(), campaign.ID)
	require.NoError(t, err)

	invite, err := fx.service.AddAssessor(context.Background(), campaign.ID, &AddAssessorRequest{
		Email:    "peer@example.com",
		Relation: models.RelationPeer,
	})
	require.NoError(t, err)

	fresh, err := fx.service.ResetToken(context.Background(), campaign.ID, invite.SubmissionID)
	require.NoError(t, err)

	assert.NotEqual(t, invite.Token, fresh.Token)
	_, revoked := fx.repo.tokens[invite.Token]
	assert.False(t, revoked, "old token is deleted")
	_, active := fx.repo.tokens[fresh.Token]
	assert.True(t, active)

	t.Run("submission must belong to the campaign", func(t *testing.T) {
		_, err := fx.service.ResetToken(context.Background(), campaign.ID+1, invite.SubmissionID)
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})
}

func TestCampaignService_Delete(t *testing.T) {
	fx := newCampaignFixture(t)
	campaign, err := fx.service.Create(context.Background(), fx.createRequest(), "admin-1")
	require.NoError(t, err)

	// Collected feedback blocks deletion.
	require.NoError(t, fx.repo.Submission().Create(context.Background(), &models.Submission{
		CampaignID:    campaign.ID,
		AssessorEmail: "peer@example.com",
		Relation:      models.RelationPeer,
		Status:        models.SubmissionCompleted,
	}))

	err = fx.service.Delete(context.Background(), campaign.ID)
	var bre *BusinessRuleError
	require.ErrorAs(t, err, &bre)
	assert.Equal(t, "campaign_has_feedback", bre.Rule)
}
