package message

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/messages"
)

// Handler serves the messaging screen
type Handler struct {
	service messages.Service
}

// NewHandler creates a new message handler
func NewHandler(service messages.Service) *Handler {
	return &Handler{service: service}
}

// HandleListLikers handles GET /api/messages/likers: everyone who liked one
// of the caller's posts
func (h *Handler) HandleListLikers(w http.ResponseWriter, r *http.Request) {
	likers, err := h.service.ListLikers(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"likers": likers})
}

// HandleConversation handles GET /api/messages/{userID}
func (h *Handler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.Conversation(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "userID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// HandleSend handles POST /api/messages/{userID}
//
// Request body: { "content": "..." }
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 32*1024)

	var req messages.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large")
			return
		}
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "userID"), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, msg)
}
