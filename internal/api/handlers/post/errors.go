package post

import (
	"errors"
	"log/slog"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/core/posts"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrUnauthenticated):
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")

	case errors.Is(err, posts.ErrProfileRequired):
		handlers.WriteError(w, http.StatusForbidden, "ProfileRequired",
			"Set up your profile before posting")

	case errors.Is(err, posts.ErrNotFound):
		handlers.WriteError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case posts.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		// don't leak internal error details to clients
		slog.Error("unexpected error in post handler", "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
