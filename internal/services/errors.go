package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/survey-assistant/internal/errors"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionSubmitted = errors.New("session already submitted")
	ErrSessionCorrupted = errors.New("session snapshot cannot be restored")

	// Response file errors
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// Answer suggestions
	ErrSuggestionsDisabled = errors.New("answer suggestions are not configured")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

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
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, repositories.ErrNotFound) ||
		errors.Is(err, storage.ErrResponsesNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, survey.ErrIndexOutOfRange) ||
		errors.Is(err, survey.ErrTypeMismatch) ||
		errors.Is(err, survey.ErrDuplicateQuestion) {
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

// IsConflict checks if error represents a state conflict: the session is
// not in the state the operation needs
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionSubmitted) ||
		errors.Is(err, survey.ErrAlreadySubmitted) ||
		errors.Is(err, survey.ErrNotInReview)
}

// IsUpstream checks if error came from a system the service depends on
func IsUpstream(err error) bool {
	return errors.Is(err, source.ErrFetchFailure) ||
		errors.Is(err, formfill.ErrSubmissionTimeout) ||
		errors.Is(err, formfill.ErrNothingFilled) ||
		errors.Is(err, ErrSuggestionsDisabled)
}
