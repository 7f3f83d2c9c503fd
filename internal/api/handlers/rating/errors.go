package rating

import (
	"errors"
	"log/slog"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/backend"
	"Swipeline/internal/core/ratings"
)

// handleServiceError converts recorder errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ratings.ErrInvalidDirection):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "direction must be 'left' or 'right'")
	case errors.Is(err, ratings.ErrInvalidPost):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "post id is required")
	case errors.Is(err, ratings.ErrUnauthenticated):
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
	case backend.KindOf(err) == backend.KindInvalid:
		// foreign key: the post is gone
		handlers.WriteError(w, http.StatusNotFound, "PostNotFound", "Post not found")
	case backend.KindOf(err) == backend.KindUnavailable:
		handlers.WriteError(w, http.StatusServiceUnavailable, "Unavailable", "Try again later")
	default:
		slog.Error("rating handler error", "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
