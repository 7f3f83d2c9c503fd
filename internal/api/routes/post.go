package routes

import (
	"github.com/go-chi/chi/v5"

	"Swipeline/internal/api/handlers/post"
	"Swipeline/internal/api/handlers/rating"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/posts"
)

// RegisterPostRoutes registers post creation, lookup and rating endpoints
func RegisterPostRoutes(r chi.Router, service posts.Service, recorder rating.Recorder, authMiddleware *middleware.AuthMiddleware) {
	createHandler := post.NewCreateHandler(service)
	getHandler := post.NewGetHandler(service)
	ratingHandler := rating.NewCreateRatingHandler(recorder)

	r.With(authMiddleware.RequireAuth).Post("/api/posts", createHandler.HandleCreate)
	r.Get("/api/posts/{id}", getHandler.HandleGet)
	r.Get("/api/users/{id}/posts", getHandler.HandleListByAuthor)

	// for clients without a session socket; swipes on the socket are saved by the feed controller
	r.With(authMiddleware.RequireAuth).Post("/api/posts/{id}/rating", ratingHandler.HandleCreateRating)
}
