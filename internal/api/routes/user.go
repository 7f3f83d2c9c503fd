package routes

import (
	"github.com/go-chi/chi/v5"

	"Swipeline/internal/api/handlers/account"
	"Swipeline/internal/api/handlers/user"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/users"
)

// RegisterUserRoutes registers author lookup, profile and account endpoints
func RegisterUserRoutes(r chi.Router, service users.UserService, accounts account.Getter, authMiddleware *middleware.AuthMiddleware) {
	authorHandler := user.NewGetAuthorHandler(service)
	profileHandler := user.NewProfileHandler(service)
	accountHandler := account.NewGetAccountHandler(accounts)

	r.Get("/api/users/{id}", authorHandler.HandleGetAuthor)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/api/profile", profileHandler.HandleGetProfile)
		r.Put("/api/profile", profileHandler.HandleUpdateProfile)
		r.Get("/api/account", accountHandler.HandleGetAccount)
	})
}
