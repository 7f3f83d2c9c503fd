package feed

import (
	"context"
	"log/slog"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/posts"
)

// Loader produces the viewer's unrated posts, newest first
type Loader interface {
	Load(ctx context.Context, viewerID string) ([]*posts.Post, error)
}

// GetFeedHandler serves a one-shot feed for clients without a session socket
type GetFeedHandler struct {
	loader Loader
	logger *slog.Logger
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(loader Loader, logger *slog.Logger) *GetFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetFeedHandler{loader: loader, logger: logger}
}

// HandleGetFeed handles GET /api/feed. Anonymous viewers get every post.
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r)

	list, err := h.loader.Load(r.Context(), viewerID)
	if err != nil {
		h.logger.Warn("feed load failed", "error", err, "viewer", viewerID)
		handlers.WriteError(w, http.StatusServiceUnavailable, "FeedUnavailable", "The feed could not be loaded")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"posts": list})
}
