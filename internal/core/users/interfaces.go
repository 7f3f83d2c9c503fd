package users

import "context"

// UserRepository defines profile data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Profile, error)
	Upsert(ctx context.Context, profile *Profile) (*Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// UserService defines profile business logic
type UserService interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context, ids []string) ([]*Profile, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Profile, error)
	ProfileExists(ctx context.Context, id string) (bool, error)

	// GetAuthor returns card display info, served from the author cache when possible
	GetAuthor(ctx context.Context, id string) (*Author, error)
}
