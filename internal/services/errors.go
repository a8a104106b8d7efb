package services

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/chronoquiz/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Not-found conditions
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found in quiz")
	ErrAttemptNotFound  = errors.New("attempt not found")

	// State conflicts
	ErrQuestionAlreadyAnswered = errors.New("question already answered in this session")

	// ErrSessionInvalid is the single collapsed class for unknown, expired and
	// already-finished session tokens. Callers must not be able to tell these
	// apart, so no more specific error ever leaves the service layer.
	ErrSessionInvalid = errors.New("invalid or expired session")

	// Exhaustion
	ErrShareCodeExhausted = errors.New("share code generation exceeded retry budget")

	ErrValidationFailed = errors.New("validation failed")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrQuestionAlreadyAnswered)
}

// IsSessionInvalid checks for the opaque invalid-session condition
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}
