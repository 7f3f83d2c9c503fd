package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post is not found by id
	ErrNotFound = errors.New("post not found")

	// ErrUnauthenticated is returned when a post is created without an author
	ErrUnauthenticated = errors.New("authentication required")

	// ErrProfileRequired is returned when the author has no profile yet
	ErrProfileRequired = errors.New("profile required before posting")
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
