package posts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"Swipeline/internal/backend"
)

type postService struct {
	repo     Repository
	profiles ProfileChecker
	logger   *slog.Logger
	now      func() time.Time
}

// NewPostService creates a new post service
func NewPostService(repo Repository, profiles ProfileChecker, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:     repo,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// CreatePost creates a new post for authorID.
// Flow: validate input -> require a profile -> insert.
// Errors are returned as-is so the caller can show them to the user; this is an
// explicit action the user is waiting on.
func (s *postService) CreatePost(ctx context.Context, authorID string, req CreatePostRequest) (*Post, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, ErrUnauthenticated
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	if s.profiles != nil {
		exists, err := s.profiles.ProfileExists(ctx, authorID)
		if err != nil {
			return nil, fmt.Errorf("failed to check profile: %w", err)
		}
		if !exists {
			return nil, ErrProfileRequired
		}
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	post := &Post{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Attachments: attachments,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			"error", err,
			"author", authorID)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("post created",
		"id", post.ID,
		"author", authorID,
		"attachments", len(post.Attachments))

	return post, nil
}

// GetPost retrieves a post by id
func (s *postService) GetPost(ctx context.Context, id string) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("id", "id is required")
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ListByAuthor returns an author's posts, newest first
func (s *postService) ListByAuthor(ctx context.Context, authorID string) ([]*Post, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, NewValidationError("author", "author is required")
	}

	list, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	return list, nil
}

func validateCreateRequest(req CreatePostRequest) error {
	if req.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(req.Title) > MaxTitleLength {
		return NewValidationError("title", fmt.Sprintf("title must not exceed %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(req.Description) > MaxDescriptionLength {
		return NewValidationError("description", fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength))
	}
	if len(req.Attachments) > MaxAttachments {
		return NewValidationError("attachments", fmt.Sprintf("at most %d attachments are allowed", MaxAttachments))
	}
	for _, raw := range req.Attachments {
		if len(raw) > MaxAttachmentURLLength {
			return NewValidationError("attachments", fmt.Sprintf("attachment URLs must not exceed %d bytes", MaxAttachmentURLLength))
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError("attachments", "attachments must be http(s) URLs")
		}
	}
	return nil
}
