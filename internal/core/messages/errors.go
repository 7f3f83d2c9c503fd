package messages

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when the trimmed content is empty
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnauthenticated is returned when there is no sender
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSelfMessage is returned when a user messages themselves
	ErrSelfMessage = errors.New("cannot message yourself")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
