package feed

import (
	"context"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
)

// PostLister is the "posts newest first, minus an id set" query
type PostLister interface {
	ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error)
}

// RatedLister is the "post ids this viewer already rated" query
type RatedLister interface {
	ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error)
}

// RatingWriter persists a committed swipe. Implementations must not fail the
// caller for a lost write; see ratings.Recorder.
type RatingWriter interface {
	Record(ctx context.Context, viewerID, postID string, dir ratings.Direction) error
}

// AuthorLookup resolves card author display info
type AuthorLookup interface {
	GetAuthor(ctx context.Context, id string) (*users.Author, error)
}

// Subscriber delivers "post inserted" events from the change feed
type Subscriber interface {
	SubscribePostInserts(ctx context.Context, handler func(*posts.Post)) (Subscription, error)
}

// Subscription is a live change-feed subscription
type Subscription interface {
	Unsubscribe() error
}
