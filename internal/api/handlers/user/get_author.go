package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/core/users"
)

// GetAuthorHandler serves the display info shown on swipe cards
type GetAuthorHandler struct {
	service users.UserService
}

// NewGetAuthorHandler creates a new author handler
func NewGetAuthorHandler(service users.UserService) *GetAuthorHandler {
	return &GetAuthorHandler{service: service}
}

// HandleGetAuthor handles GET /api/users/{id}
func (h *GetAuthorHandler) HandleGetAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := h.service.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	handlers.WriteJSON(w, http.StatusOK, author)
}
