package services

import (
	"strings"
	"time"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

// Messages surfaced to assessors, keyed per question. The exact wording is
// part of the contract with the form UI.
const (
	msgRequiresResponse = "This question requires a response"
	msgSelectRating     = "Please select a rating"
	msgTooShort         = "Please provide a more detailed response (at least 10 characters)"

	minResponseLength = 10
)

// ValidationResult is the outcome of a local validation pass over one
// assessor's current responses.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// ValidationService provides centralized business rule validation
type ValidationService struct{}

func NewValidationService() *ValidationService {
	return &ValidationService{}
}

// ===== RESPONSE VALIDATION =====

// ValidateResponses checks every required question against the assessor's
// current responses. Pure function over the given state; runs before both
// the quality check and the final submission.
//
// Rules execute in order and later rules overwrite earlier messages for the
// same question: a required open-ended question with text that is present
// but shorter than the minimum ends up with the "more detailed" message,
// not the "requires a response" one.
func (v *ValidationService) ValidateResponses(questions []models.Question, responses map[string]models.Response) ValidationResult {
	errors := make(map[string]string)

	// Rule 1: required open-ended questions need non-blank text
	for _, q := range questions {
		if !q.Required || q.Type != models.QuestionOpenEnded {
			continue
		}
		resp, ok := responses[q.ID]
		if !ok || strings.TrimSpace(resp.Text) == "" {
			errors[q.ID] = msgRequiresResponse
		}
	}

	// Rule 2: required rating questions need a rating
	for _, q := range questions {
		if !q.Required || q.Type != models.QuestionRating {
			continue
		}
		resp, ok := responses[q.ID]
		if !ok || resp.Rating == nil {
			errors[q.ID] = msgSelectRating
		}
	}

	// Rule 3: present but too-short open-ended text. Overwrites rule 1's
	// message when both apply; blank text stays with rule 1.
	for _, q := range questions {
		if !q.Required || q.Type != models.QuestionOpenEnded {
			continue
		}
		resp, ok := responses[q.ID]
		if !ok {
			continue
		}
		if strings.TrimSpace(resp.Text) != "" && len(resp.Text) < minResponseLength {
			errors[q.ID] = msgTooShort
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ===== CAMPAIGN VALIDATION =====

func (v *ValidationService) ValidateCampaignCreate(title string, questions []models.Question, deadline *time.Time) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(title) == "" {
		errors = append(errors, *NewValidationError("title", "cannot be empty", title))
	}
	if len(title) > 200 {
		errors = append(errors, *NewValidationError("title", "cannot exceed 200 characters", len(title)))
	}

	if len(questions) == 0 {
		errors = append(errors, *NewValidationError("questions", "at least one question is required", 0))
	}
	errors = append(errors, v.validateQuestionSet(questions)...)

	if deadline != nil && deadline.Before(time.Now()) {
		errors = append(errors, *NewValidationError("deadline", "must be in the future", deadline))
	}

	return errors
}

func (v *ValidationService) validateQuestionSet(questions []models.Question) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q.ID) == "" {
			errors = append(errors, *NewValidationError("questions", "every question needs an id", i))
			continue
		}
		if seen[q.ID] {
			errors = append(errors, *NewValidationError("questions", "duplicate question id", q.ID))
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Text) == "" {
			errors = append(errors, *NewValidationError("questions", "question text cannot be empty", q.ID))
		}
		if q.Type != models.QuestionRating && q.Type != models.QuestionOpenEnded {
			errors = append(errors, *NewValidationError("questions", "invalid question type", string(q.Type)))
		}
	}

	return errors
}
