package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Swipeline/internal/backend"
	"Swipeline/internal/metrics"
)

// Recorder persists (viewer, post, kind) ratings.
//
// Writes are at-most-effort: a duplicate is success, and any other failure is
// logged and dropped. A card the viewer already swiped away is never brought back.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a rating recorder
func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record maps dir to a kind and issues a single insert. It never returns an
// error for a failed write; the returned error only reports bad input.
// An empty viewer is a no-op: anonymous swipes are not persisted.
func (r *Recorder) Record(ctx context.Context, viewerID, postID string, dir Direction) error {
	if strings.TrimSpace(viewerID) == "" {
		return nil
	}

	kind, err := r.write(ctx, viewerID, postID, dir)
	if err != nil {
		if errors.Is(err, ErrInvalidDirection) || errors.Is(err, ErrInvalidPost) {
			return err
		}
		r.logger.Error("failed to save rating",
			"error", err,
			"viewer", viewerID,
			"post", postID,
			"kind", kind)
	}
	return nil
}

// RecordStrict is Record for callers that want to report a failed write
// (the HTTP rating endpoint). Duplicates are still success.
func (r *Recorder) RecordStrict(ctx context.Context, viewerID, postID string, dir Direction) (Kind, error) {
	if strings.TrimSpace(viewerID) == "" {
		return "", ErrUnauthenticated
	}
	return r.write(ctx, viewerID, postID, dir)
}

func (r *Recorder) write(ctx context.Context, viewerID, postID string, dir Direction) (Kind, error) {
	if strings.TrimSpace(postID) == "" {
		return "", ErrInvalidPost
	}
	if !dir.Horizontal() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidDirection, dir)
	}

	kind := KindFromDirection(dir)
	rating := &Rating{
		ViewerID:  viewerID,
		PostID:    postID,
		Kind:      kind,
		CreatedAt: r.now().UTC(),
	}

	err := r.repo.Create(ctx, rating)
	switch {
	case err == nil:
		metrics.RecordRating(string(kind), "ok")
		r.logger.Debug("rating saved",
			"viewer", viewerID,
			"post", postID,
			"kind", kind)
		return kind, nil
	case backend.IsUniqueViolation(err):
		// Already rated, possibly from another device
		metrics.RecordRating(string(kind), "duplicate")
		r.logger.Debug("duplicate rating ignored",
			"viewer", viewerID,
			"post", postID)
		return kind, nil
	default:
		metrics.RecordRating(string(kind), "failed")
		return kind, fmt.Errorf("failed to save rating: %w", err)
	}
}
