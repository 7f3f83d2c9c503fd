// Package account assembles the viewer's own page: profile, posts and likes.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/users"
)

// ErrUnauthenticated is returned without a viewer
var ErrUnauthenticated = errors.New("authentication required")

// Overview is everything shown on the account screen
type Overview struct {
	Profile *users.Profile `json:"profile,omitempty"`
	Posts   []*posts.Post  `json:"posts"`
	Liked   []*posts.Post  `json:"liked"`
}

// ProfileGetter loads the viewer's profile
type ProfileGetter interface {
	GetProfile(ctx context.Context, id string) (*users.Profile, error)
}

// AuthoredLister lists posts written by a user, newest first
type AuthoredLister interface {
	ListByAuthor(ctx context.Context, authorID string) ([]*posts.Post, error)
}

// LikedLister lists posts a user liked, newest first
type LikedLister interface {
	ListLikedPosts(ctx context.Context, viewerID string) ([]*posts.Post, error)
}

// Service builds account overviews
type Service struct {
	profiles ProfileGetter
	authored AuthoredLister
	liked    LikedLister
	logger   *slog.Logger
}

// NewService creates an account service
func NewService(profiles ProfileGetter, authored AuthoredLister, liked LikedLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		profiles: profiles,
		authored: authored,
		liked:    liked,
		logger:   logger,
	}
}

// Get returns the viewer's overview. A viewer without a profile yet gets a
// nil Profile, not an error.
func (s *Service) Get(ctx context.Context, viewerID string) (*Overview, error) {
	if strings.TrimSpace(viewerID) == "" {
		return nil, ErrUnauthenticated
	}

	profile, err := s.profiles.GetProfile(ctx, viewerID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		s.logger.Debug("account has no profile yet", "viewer", viewerID)
		profile = nil
	}

	own, err := s.authored.ListByAuthor(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list own posts: %w", err)
	}

	liked, err := s.liked.ListLikedPosts(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked posts: %w", err)
	}

	if own == nil {
		own = []*posts.Post{}
	}
	if liked == nil {
		liked = []*posts.Post{}
	}
	return &Overview{Profile: profile, Posts: own, Liked: liked}, nil
}
