package rating

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/ratings"
)

// Recorder writes a rating and reports failures
type Recorder interface {
	RecordStrict(ctx context.Context, viewerID, postID string, dir ratings.Direction) (ratings.Kind, error)
}

// CreateRatingRequest is the body of a rating request
type CreateRatingRequest struct {
	Direction ratings.Direction `json:"direction"`
}

// CreateRatingResponse reports the stored kind
type CreateRatingResponse struct {
	PostID string       `json:"postId"`
	Kind   ratings.Kind `json:"kind"`
}

// CreateRatingHandler handles rating creation
type CreateRatingHandler struct {
	recorder Recorder
}

// NewCreateRatingHandler creates a new create rating handler
func NewCreateRatingHandler(recorder Recorder) *CreateRatingHandler {
	return &CreateRatingHandler{
		recorder: recorder,
	}
}

// HandleCreateRating records a swipe decision for clients that do not keep a
// session socket open. Rating the same post twice succeeds both times.
// POST /api/posts/{id}/rating
//
// Request body: { "direction": "left" | "right" }
func (h *CreateRatingHandler) HandleCreateRating(w http.ResponseWriter, r *http.Request) {
	var req CreateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	if req.Direction == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "direction is required")
		return
	}

	viewerID := middleware.GetUserID(r)
	if viewerID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	postID := chi.URLParam(r, "id")
	kind, err := h.recorder.RecordStrict(r.Context(), viewerID, postID, req.Direction)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, CreateRatingResponse{PostID: postID, Kind: kind})
}
