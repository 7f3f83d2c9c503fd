package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/core/posts"
)

// GetHandler serves single posts
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{service: service}
}

// HandleGet handles GET /api/posts/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleListByAuthor handles GET /api/users/{id}/posts
func (h *GetHandler) HandleListByAuthor(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"posts": list})
}
