package users

import (
	"time"
)

// Profile is a user's public profile, edited on the settings screen
type Profile struct {
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Bio       string    `json:"bio,omitempty" db:"bio"`
	IconURL   string    `json:"iconUrl,omitempty" db:"icon_url"`
}

// Author is the display info shown on a swipe card
type Author struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Author returns the card display info for the profile
func (p *Profile) Author() *Author {
	return &Author{ID: p.ID, Name: p.Name, IconURL: p.IconURL}
}

// UpdateProfileRequest is the input for the settings screen
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Bio     string `json:"bio"`
	IconURL string `json:"iconUrl"`
}

// Limits enforced on profile updates
const (
	MaxNameLength = 50
	MaxBioLength  = 500
)
