package users

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"Swipeline/internal/backend"
)

type userService struct {
	userRepo UserRepository
	cache    *AuthorCache
	logger   *slog.Logger
}

// NewUserService creates a new user service. cache may be nil.
func NewUserService(userRepo UserRepository, cache *AuthorCache, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// GetProfile retrieves a profile by user id
func (s *userService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("id", "id is required")
	}

	profile, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListProfiles retrieves profiles for ids in one query; missing ids are skipped
func (s *userService) ListProfiles(ctx context.Context, ids []string) ([]*Profile, error) {
	if len(ids) == 0 {
		return []*Profile{}, nil
	}
	profiles, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile creates or replaces the caller's profile
func (s *userService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("id", "id is required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Bio = strings.TrimSpace(req.Bio)
	req.IconURL = strings.TrimSpace(req.IconURL)

	if req.Name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(req.Name) > MaxNameLength {
		return nil, NewValidationError("name", fmt.Sprintf("name must not exceed %d characters", MaxNameLength))
	}
	if utf8.RuneCountInString(req.Bio) > MaxBioLength {
		return nil, NewValidationError("bio", fmt.Sprintf("bio must not exceed %d characters", MaxBioLength))
	}
	if req.IconURL != "" {
		u, err := url.Parse(req.IconURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, NewValidationError("iconUrl", "iconUrl must be an http(s) URL")
		}
	}

	profile, err := s.userRepo.Upsert(ctx, &Profile{
		ID:        id,
		Name:      req.Name,
		Bio:       req.Bio,
		IconURL:   req.IconURL,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(id)
	}

	s.logger.Info("profile updated", "user", id)
	return profile, nil
}

// ProfileExists reports whether id has a profile row
func (s *userService) ProfileExists(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	exists, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}
	return exists, nil
}

// GetAuthor returns display info for a card's author
func (s *userService) GetAuthor(ctx context.Context, id string) (*Author, error) {
	if s.cache != nil {
		if author, ok := s.cache.Get(id); ok {
			return author, nil
		}
	}

	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	author := profile.Author()
	if s.cache != nil {
		s.cache.Set(author)
	}
	return author, nil
}
