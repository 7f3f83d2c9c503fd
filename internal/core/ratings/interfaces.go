package ratings

import (
	"context"

	"Swipeline/internal/core/posts"
)

// Repository defines rating data access
type Repository interface {
	// Create inserts a rating. A duplicate (viewer, post) pair returns a
	// backend error of kind UniqueViolation.
	Create(ctx context.Context, rating *Rating) error

	// ListRatedPostIDs returns every post id the viewer has rated, in one query
	ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error)

	// ListLikedPosts returns posts the viewer liked, most recent like first
	ListLikedPosts(ctx context.Context, viewerID string) ([]*posts.Post, error)

	// ListLikerIDs returns the distinct viewers who liked any post by authorID
	ListLikerIDs(ctx context.Context, authorID string) ([]string, error)
}
