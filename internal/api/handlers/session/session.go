// Package session serves the swipe feed over a websocket. One connection is
// one activation of a feed controller.
package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"Swipeline/internal/api/handlers/stream"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/feed"
	"Swipeline/internal/core/users"
)

// Handler upgrades GET /ws/feed and runs a feed controller for the connection
type Handler struct {
	deps     feed.Deps
	opts     feed.Options
	upgrader *websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a session handler. opts.OnChange is replaced per connection.
func NewHandler(deps feed.Deps, opts feed.Options, upgrader *websocket.Upgrader) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if upgrader == nil {
		upgrader = stream.NewUpgrader(nil)
	}
	return &Handler{
		deps:     deps,
		opts:     opts,
		upgrader: upgrader,
		logger:   logger,
	}
}

// ServeHTTP handles GET /ws/feed. The viewer comes from the optional
// access token; without one the session is anonymous and swipes are not saved.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		h.logger.Debug("feed session upgrade failed", "error", err)
		return
	}

	var ctrl *feed.Controller
	conn := stream.New(ws, func() any {
		return ViewFrame{Type: FrameView, View: ctrl.View()}
	}, h.logger)

	opts := h.opts
	opts.OnChange = conn.Invalidate
	ctrl = feed.NewController(h.deps, opts)

	h.logger.Info("feed session opened", "viewer", viewerID, "remote", r.RemoteAddr)
	ctrl.OnActivate(r.Context(), viewerID)

	conn.Run(r.Context(), func(data []byte) {
		h.handleFrame(ctrl, conn, data)
	})

	ctrl.OnDeactivate()
	h.logger.Info("feed session closed", "viewer", viewerID)
}

func (h *Handler) handleFrame(ctrl *feed.Controller, conn *stream.Conn, data []byte) {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		conn.Send(ErrorFrame{Type: FrameError, Error: "InvalidFrame", Message: "frame is not valid JSON"})
		return
	}

	var err error
	switch frame.Type {
	case FrameDrag:
		err = ctrl.BeginDrag(frame.ID)

	case FrameRelease:
		if frame.Gesture == nil {
			conn.Send(ErrorFrame{Type: FrameError, Error: "InvalidFrame", Message: "gesture is required", ID: frame.ID})
			return
		}
		var outcome feed.ReleaseOutcome
		if outcome, err = ctrl.Release(frame.ID, *frame.Gesture); err == nil {
			conn.Send(OutcomeFrame{Type: FrameOutcome, ID: frame.ID, Outcome: outcome})
		}

	case FrameCommit:
		var outcome feed.ReleaseOutcome
		if outcome, err = ctrl.Commit(frame.ID, frame.Direction); err == nil {
			conn.Send(OutcomeFrame{Type: FrameOutcome, ID: frame.ID, Outcome: outcome})
		}

	case FrameExit:
		err = ctrl.ExitComplete(frame.ID)

	case FrameRefresh:
		err = ctrl.Refresh()

	case FrameAuthor:
		err = ctrl.Author(frame.AuthorID, func(author *users.Author) {
			conn.Send(AuthorFrame{Type: FrameAuthor, Author: author})
		})

	default:
		conn.Send(ErrorFrame{Type: FrameError, Error: "UnknownFrame", Message: "unknown frame type " + frame.Type})
		return
	}

	if err != nil {
		h.logger.Debug("feed intent rejected", "type", frame.Type, "id", frame.ID, "error", err)
		conn.Send(errorFrame(frame.ID, err))
	}
}

func errorFrame(id string, err error) ErrorFrame {
	code := "InternalError"
	switch {
	case errors.Is(err, feed.ErrNotInteractive):
		code = "NotInteractive"
	case errors.Is(err, feed.ErrCardNotFound):
		code = "CardNotFound"
	case errors.Is(err, feed.ErrNotActive):
		code = "NotActive"
	}
	return ErrorFrame{Type: FrameError, Error: code, Message: err.Error(), ID: id}
}
