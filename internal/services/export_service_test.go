package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

func TestExportCampaignResults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newFakeRepo()
	ctx := context.Background()

	questions := []models.Question{
		{ID: "q1", Text: "Rate their communication", Type: models.QuestionRating, Required: true, Order: 1},
		{ID: "q2", Text: "Describe their strengths", Type: models.QuestionOpenEnded, Required: true, Order: 2},
	}
	rawQuestions, err := json.Marshal(questions)
	require.NoError(t, err)

	campaign := &models.Campaign{
		Title:     "Annual Review",
		Status:    models.CampaignActive,
		Questions: datatypes.JSON(rawQuestions),
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Campaign().Create(ctx, campaign))

	rating := 4
	responses, err := json.Marshal([]models.Response{
		{QuestionID: "q1", Rating: &rating},
		{QuestionID: "q2", Text: "Clear and concise in meetings."},
	})
	require.NoError(t, err)
	evaluation, err := json.Marshal(models.AIEvaluationResult{Quality: models.QualityNeedsImprovement})
	require.NoError(t, err)

	submittedAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Submission().Create(ctx, &models.Submission{
		CampaignID:                campaign.ID,
		AssessorEmail:             "peer@example.com",
		Relation:                  models.RelationPeer,
		Status:                    models.SubmissionCompleted,
		Responses:                 datatypes.JSON(responses),
		AIEvaluationResults:       datatypes.JSON(evaluation),
		BypassedAIRecommendations: true,
		SubmittedAt:               &submittedAt,
	}))
	require.NoError(t, repo.Submission().Create(ctx, &models.Submission{
		CampaignID:    campaign.ID,
		AssessorEmail: "manager@example.com",
		Relation:      models.RelationManager,
		Status:        models.SubmissionCompleted,
		Responses:     datatypes.JSON(responses),
		SubmittedAt:   &submittedAt,
	}))
	// A pending submission must not appear in the export.
	require.NoError(t, repo.Submission().Create(ctx, &models.Submission{
		CampaignID:    campaign.ID,
		AssessorEmail: "report@example.com",
		Relation:      models.RelationDirectReport,
		Status:        models.SubmissionPending,
	}))

	svc := NewExportService(repo, logger)

	data, filename, err := svc.ExportCampaignResults(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, "feedback")
	assert.Contains(t, filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per completed submission")

	assert.Equal(t, []string{
		"Assessor Email", "Relation", "Submitted At", "Bypassed AI Review", "AI Quality",
		"Rate their communication (rating)", "Describe their strengths",
	}, rows[0])

	byEmail := map[string][]string{}
	for _, row := range rows[1:] {
		byEmail[row[0]] = row
	}

	bypassed := byEmail["peer@example.com"]
	require.NotNil(t, bypassed)
	assert.Equal(t, "true", bypassed[3])
	assert.Equal(t, "needs_improvement", bypassed[4])
	assert.Equal(t, "4", bypassed[5])
	assert.Equal(t, "Clear and concise in meetings.", bypassed[6])

	clean := byEmail["manager@example.com"]
	require.NotNil(t, clean)
	assert.Equal(t, "false", clean[3])
}

func TestExportCampaignResults_UnknownCampaign(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewExportService(newFakeRepo(), logger)

	_, _, err := svc.ExportCampaignResults(context.Background(), 999)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}
