package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	feedHandlers "Swipeline/internal/api/handlers/feed"
	"Swipeline/internal/api/handlers/session"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/feed"
)

// RegisterFeedRoutes registers the one-shot feed and the swipe session socket
func RegisterFeedRoutes(r chi.Router, deps feed.Deps, opts feed.Options, upgrader *websocket.Upgrader, authMiddleware *middleware.AuthMiddleware, logger *slog.Logger) {
	getHandler := feedHandlers.NewGetFeedHandler(deps.Loader, logger)
	sessionHandler := session.NewHandler(deps, opts, upgrader)

	r.With(authMiddleware.OptionalAuth).Get("/api/feed", getHandler.HandleGetFeed)

	// browsers cannot set headers on a websocket; the token may come as ?access_token=
	r.With(authMiddleware.OptionalAuth).Get("/ws/feed", sessionHandler.ServeHTTP)
}
