package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
)

const resultsSheet = "Feedback"

// ExportService renders a campaign's collected feedback as a spreadsheet for
// HR review. One row per completed submission, one column pair per question.
type ExportService interface {
	ExportCampaignResults(ctx context.Context, campaignID uint) ([]byte, string, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportCampaignResults(ctx context.Context, campaignID uint) ([]byte, string, error) {
	campaign, err := s.repo.Campaign().GetByIDWithDetails(ctx, campaignID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrCampaignNotFound
		}
		return nil, "", fmt.Errorf("failed to get campaign: %w", err)
	}

	questions, err := campaign.QuestionSet()
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode questions: %w", err)
	}

	completed := models.SubmissionCompleted
	submissions, _, err := s.repo.Submission().GetByCampaign(ctx, campaignID, repositories.SubmissionFilters{
		Status: &completed,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to load submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Assessor Email", "Relation", "Submitted At", "Bypassed AI Review", "AI Quality"}
	for _, q := range questions {
		switch q.Type {
		case models.QuestionRating:
			headers = append(headers, q.Text+" (rating)")
		default:
			headers = append(headers, q.Text)
		}
	}
	if err := s.writeRow(f, 1, headers); err != nil {
		return nil, "", err
	}

	for i, sub := range submissions {
		row, err := s.submissionRow(sub, questions)
		if err != nil {
			s.logger.Warn("Skipping unreadable submission in export",
				"submission_id", sub.ID, "error", err)
			continue
		}
		if err := s.writeRow(f, i+2, row); err != nil {
			return nil, "", err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	filename := fmt.Sprintf("campaign-%d-feedback-%s.xlsx", campaignID, time.Now().Format("2006-01-02"))
	s.logger.Info("Campaign results exported",
		"campaign_id", campaignID,
		"submissions", len(submissions))
	return buf.Bytes(), filename, nil
}

func (s *exportService) submissionRow(sub *models.Submission, questions []models.Question) ([]string, error) {
	responses, err := sub.FinalResponses()
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]models.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	submittedAt := ""
	if sub.SubmittedAt != nil {
		submittedAt = sub.SubmittedAt.Format(time.RFC3339)
	}

	quality := ""
	if len(sub.AIEvaluationResults) > 0 {
		var ai models.AIEvaluationResult
		if err := json.Unmarshal(sub.AIEvaluationResults, &ai); err == nil {
			quality = string(ai.Quality)
		}
	}

	row := []string{
		sub.AssessorEmail,
		string(sub.Relation),
		submittedAt,
		strconv.FormatBool(sub.BypassedAIRecommendations),
		quality,
	}

	for _, q := range questions {
		r, ok := byQuestion[q.ID]
		if !ok {
			row = append(row, "")
			continue
		}
		switch q.Type {
		case models.QuestionRating:
			if r.Rating != nil {
				row = append(row, strconv.Itoa(*r.Rating))
			} else {
				row = append(row, "")
			}
		default:
			row = append(row, r.Text)
		}
	}

	return row, nil
}

func (s *exportService) writeRow(f *excelize.File, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(resultsSheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
