package ratings

import "errors"

var (
	// ErrInvalidDirection indicates a direction that cannot commit a rating
	ErrInvalidDirection = errors.New("invalid direction: must be 'left' or 'right'")

	// ErrInvalidPost indicates a missing post id
	ErrInvalidPost = errors.New("post id is required")

	// ErrUnauthenticated indicates a rating without a viewer
	ErrUnauthenticated = errors.New("authentication required")
)
