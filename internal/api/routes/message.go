package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"Swipeline/internal/api/handlers/message"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/messages"
)

// RegisterMessageRoutes registers the messaging endpoints. All require auth.
func RegisterMessageRoutes(r chi.Router, service messages.Service, upgrader *websocket.Upgrader, authMiddleware *middleware.AuthMiddleware, logger *slog.Logger) {
	h := message.NewHandler(service)
	watchHandler := message.NewWatchHandler(service, upgrader, logger)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/api/messages/likers", h.HandleListLikers)
		r.Get("/api/messages/{userID}", h.HandleConversation)
		r.Post("/api/messages/{userID}", h.HandleSend)
		r.Get("/ws/messages/{userID}", watchHandler.ServeHTTP)
	})
}
