package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/posts"
)

// maxBodyBytes caps a create request; attachments are URLs, not uploads
const maxBodyBytes = 64 * 1024

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /api/posts
//
// Request body: { "title": "...", "description": "...", "attachments": ["https://..."] }
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req posts.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large")
			return
		}
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	// the author always comes from the token
	authorID := middleware.GetUserID(r)
	if authorID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	post, err := h.service.CreatePost(r.Context(), authorID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, post)
}
