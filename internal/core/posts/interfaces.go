package posts

import "context"

// Repository defines post data access
type Repository interface {
	// ListRecent returns posts ordered by creation time, newest first,
	// skipping any id in exclude. A nil or empty exclude returns everything.
	ListRecent(ctx context.Context, exclude []string) ([]*Post, error)

	// Create inserts a post. ID and CreatedAt are filled in when empty.
	Create(ctx context.Context, post *Post) error

	GetByID(ctx context.Context, id string) (*Post, error)

	// ListByAuthor returns an author's posts, newest first
	ListByAuthor(ctx context.Context, authorID string) ([]*Post, error)
}

// ProfileChecker reports whether a user has set up a profile.
// Posting requires one.
type ProfileChecker interface {
	ProfileExists(ctx context.Context, userID string) (bool, error)
}

// Service defines post business logic
type Service interface {
	CreatePost(ctx context.Context, authorID string, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Post, error)
}
