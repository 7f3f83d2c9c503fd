package feed

import (
	"context"
	"fmt"
	"strings"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/metrics"
)

// Loader runs the initial feed query for a viewer
type Loader struct {
	posts PostLister
	rated RatedLister
}

// NewLoader creates a feed loader
func NewLoader(postLister PostLister, rated RatedLister) *Loader {
	return &Loader{
		posts: postLister,
		rated: rated,
	}
}

// Load returns every post the viewer has not rated yet, newest first.
// A known viewer costs exactly two queries (one batch lookup of prior ratings,
// one filtered post query) no matter how big the feed is. An anonymous viewer
// gets the unfiltered feed in one query.
func (l *Loader) Load(ctx context.Context, viewerID string) ([]*posts.Post, error) {
	var exclude []string

	if strings.TrimSpace(viewerID) != "" {
		ids, err := l.rated.ListRatedPostIDs(ctx, viewerID)
		if err != nil {
			metrics.RecordFeedLoad("failed")
			return nil, fmt.Errorf("failed to list rated posts: %w", err)
		}
		exclude = ids
	}

	list, err := l.posts.ListRecent(ctx, exclude)
	if err != nil {
		metrics.RecordFeedLoad("failed")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if list == nil {
		list = []*posts.Post{}
	}

	metrics.RecordFeedLoad("ok")
	return list, nil
}
