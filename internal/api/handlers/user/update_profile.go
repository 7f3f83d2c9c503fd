package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"Swipeline/internal/api/handlers"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/users"
)

// ProfileHandler serves the settings screen: the caller's own profile
type ProfileHandler struct {
	service users.UserService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service users.UserService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// HandleGetProfile handles GET /api/profile.
// A user who never saved a profile gets {"profile": null}.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]*users.Profile{"profile": profile})
}

// HandleUpdateProfile handles PUT /api/profile
//
// Request body: { "name": "...", "bio": "...", "iconUrl": "https://..." }
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 16*1024)
	var req users.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]*users.Profile{"profile": profile})
}
