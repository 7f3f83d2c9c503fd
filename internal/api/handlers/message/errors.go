package message

import (
	"errors"
	"log/slog"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/core/messages"
)

// handleServiceError maps messaging errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messages.ErrUnauthenticated):
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
	case errors.Is(err, messages.ErrEmptyMessage):
		handlers.WriteError(w, http.StatusBadRequest, "EmptyMessage", "Message is empty")
	case errors.Is(err, messages.ErrSelfMessage):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Cannot message yourself")
	case messages.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		slog.Error("message handler error", "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
