package services

import (
	"errors"
	"fmt"

	apperrors "github.com/pzkpfw44/Pulse360-sub000/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Campaign specific errors
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignNotEditable    = errors.New("campaign cannot be edited in current status")
	ErrCampaignNotActive      = errors.New("campaign is not active")
	ErrCampaignDuplicateTitle = errors.New("campaign title already exists for this user")
	ErrCampaignPastDeadline   = errors.New("campaign deadline has passed")
	ErrCampaignNoQuestions    = errors.New("campaign has no questions")

	// Token specific errors
	ErrTokenNotFound = errors.New("access token not found")
	ErrTokenExpired  = errors.New("access token has expired")

	// Submission / gate specific errors
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrAlreadySubmitted    = errors.New("feedback already submitted")
	ErrCheckInFlight       = errors.New("a quality check is already running for this session")
	ErrSubmitInFlight      = errors.New("a submission is already running for this session")
	ErrBypassRequired      = errors.New("quality concerns must be acknowledged before submitting")
	ErrNothingToBypass     = errors.New("no quality concerns to acknowledge")
	ErrAssessorExists      = errors.New("assessor already added to this campaign")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEvaluationUnchanged = errors.New("responses have not changed since last evaluation")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// FieldErrors carries per-question validation messages keyed by question ID.
type FieldErrors struct {
	Errors map[string]string `json:"errors"`
}

func (fe *FieldErrors) Error() string {
	return fmt.Sprintf("validation failed for %d question(s)", len(fe.Errors))
}

func NewFieldErrors(errs map[string]string) *FieldErrors {
	return &FieldErrors{Errors: errs}
}

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCampaignNotFound) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrCampaignDuplicateTitle) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrCheckInFlight) ||
		errors.Is(err, ErrSubmitInFlight) ||
		errors.Is(err, ErrAssessorExists)
}

// IsGateBlocked checks if error means the submission gate wants an explicit
// acknowledgement before letting the feedback through.
func IsGateBlocked(err error) bool {
	return errors.Is(err, ErrBypassRequired)
}
