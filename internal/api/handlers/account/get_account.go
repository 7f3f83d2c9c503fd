package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/account"
)

// Getter builds the account overview
type Getter interface {
	Get(ctx context.Context, viewerID string) (*account.Overview, error)
}

// GetAccountHandler serves the account screen
type GetAccountHandler struct {
	service Getter
}

// NewGetAccountHandler creates a new account handler
func NewGetAccountHandler(service Getter) *GetAccountHandler {
	return &GetAccountHandler{service: service}
}

// HandleGetAccount handles GET /api/account
func (h *GetAccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Get(r.Context(), middleware.GetUserID(r))
	if err != nil {
		if errors.Is(err, account.ErrUnauthenticated) {
			handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
			return
		}
		slog.Error("failed to load account", "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, overview)
}
