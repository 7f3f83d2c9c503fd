package message

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/handlers/stream"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/messages"
)

// MessageFrame carries one new message of the conversation
type MessageFrame struct {
	Message *messages.Message `json:"message"`
	Type    string            `json:"type"`
}

// WatchHandler streams new messages of one conversation over a websocket
type WatchHandler struct {
	service  messages.Service
	upgrader *websocket.Upgrader
	logger   *slog.Logger
}

// NewWatchHandler creates a new watch handler
func NewWatchHandler(service messages.Service, upgrader *websocket.Upgrader, logger *slog.Logger) *WatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if upgrader == nil {
		upgrader = stream.NewUpgrader(nil)
	}
	return &WatchHandler{service: service, upgrader: upgrader, logger: logger}
}

// ServeHTTP handles GET /ws/messages/{userID}
func (h *WatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserID(r)
	other := chi.URLParam(r, "userID")
	if me == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("message watch upgrade failed", "error", err)
		return
	}
	conn := stream.New(ws, nil, h.logger)

	sub, err := h.service.Watch(r.Context(), me, other, func(msg *messages.Message) {
		conn.Send(MessageFrame{Type: "message", Message: msg})
	})
	if err != nil {
		// the conversation still works by polling; hang up with a reason
		h.logger.Warn("failed to watch conversation", "error", err, "user", me)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "live updates are unavailable"),
			time.Now().Add(5*time.Second))
		_ = ws.Close()
		return
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Debug("failed to unsubscribe conversation watch", "error", err)
		}
	}()

	// incoming frames are ignored; reading keeps the keepalive running
	conn.Run(r.Context(), nil)
}
