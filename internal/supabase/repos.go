package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Swipeline/internal/backend"
	"Swipeline/internal/backend/rows"
	"Swipeline/internal/core/messages"
	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
)

var (
	_ posts.Repository     = (*PostRepository)(nil)
	_ ratings.Repository   = (*RatingRepository)(nil)
	_ users.UserRepository = (*UserRepository)(nil)
	_ messages.Repository  = (*MessageRepository)(nil)
)

// PostRepository reads and writes posts through PostgREST
type PostRepository struct {
	client *Client
}

// NewPostRepository creates a post repository
func NewPostRepository(client *Client) *PostRepository {
	return &PostRepository{client: client}
}

// ListRecent returns posts newest first, skipping ids in exclude
func (r *PostRepository) ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error) {
	var result []rows.Post
	err := r.client.From(rows.TablePosts).
		Select("*").
		NotIn("id", exclude).
		Order("created_at", false).
		Order("id", false).
		Execute(ctx, &result)
	if err != nil {
		return nil, err
	}
	return toPosts(result), nil
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, post *posts.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Attachments == nil {
		post.Attachments = []string{}
	}
	var created []rows.Post
	if err := r.client.From(rows.TablePosts).Insert(ctx, rows.FromPost(post), &created); err != nil {
		return err
	}
	if len(created) > 0 {
		post.CreatedAt = created[0].CreatedAt.Time
	}
	return nil
}

// GetByID retrieves a post by id
func (r *PostRepository) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	var row rows.Post
	if err := r.client.From(rows.TablePosts).Select("*").Eq("id", id).Single().Execute(ctx, &row); err != nil {
		return nil, err
	}
	return row.ToPost(), nil
}

// ListByAuthor returns an author's posts, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]*posts.Post, error) {
	var result []rows.Post
	err := r.client.From(rows.TablePosts).
		Select("*").
		Eq("author", authorID).
		Order("created_at", false).
		Execute(ctx, &result)
	if err != nil {
		return nil, err
	}
	return toPosts(result), nil
}

// RatingRepository reads and writes ratings through PostgREST
type RatingRepository struct {
	client *Client
}

// NewRatingRepository creates a rating repository
func NewRatingRepository(client *Client) *RatingRepository {
	return &RatingRepository{client: client}
}

// Create inserts a rating; a duplicate comes back as 409 / 23505
func (r *RatingRepository) Create(ctx context.Context, rating *ratings.Rating) error {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	return r.client.From(rows.TableRatings).Insert(ctx, rows.FromRating(rating), nil)
}

// ListRatedPostIDs returns every post id the viewer rated
func (r *RatingRepository) ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error) {
	var result []struct {
		PostID string `json:"timeline_id"`
	}
	if err := r.client.From(rows.TableRatings).Select("timeline_id").Eq("user_id", viewerID).Execute(ctx, &result); err != nil {
		return nil, err
	}

	ids := make([]string, len(result))
	for i, row := range result {
		ids[i] = row.PostID
	}
	return ids, nil
}

// ListLikedPosts returns posts the viewer liked, most recent like first
func (r *RatingRepository) ListLikedPosts(ctx context.Context, viewerID string) ([]*posts.Post, error) {
	var result []struct {
		Post *rows.Post `json:"timelines"`
	}
	err := r.client.From(rows.TableRatings).
		Select("created_at,timelines(*)").
		Eq("user_id", viewerID).
		Eq("type", string(ratings.KindLike)).
		Order("created_at", false).
		Execute(ctx, &result)
	if err != nil {
		return nil, err
	}

	liked := make([]*posts.Post, 0, len(result))
	for _, row := range result {
		// the post may be hidden by row level security
		if row.Post != nil {
			liked = append(liked, row.Post.ToPost())
		}
	}
	return liked, nil
}

// ListLikerIDs returns the distinct viewers who liked any post by authorID
func (r *RatingRepository) ListLikerIDs(ctx context.Context, authorID string) ([]string, error) {
	var result []struct {
		ViewerID string `json:"user_id"`
	}
	err := r.client.From(rows.TableRatings).
		Select("user_id,timelines!inner(author)").
		Eq("timelines.author", authorID).
		Eq("type", string(ratings.KindLike)).
		Neq("user_id", authorID).
		Execute(ctx, &result)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(result))
	ids := make([]string, 0, len(result))
	for _, row := range result {
		if _, ok := seen[row.ViewerID]; ok {
			continue
		}
		seen[row.ViewerID] = struct{}{}
		ids = append(ids, row.ViewerID)
	}
	return ids, nil
}

// UserRepository reads and writes profiles through PostgREST
type UserRepository struct {
	client *Client
}

// NewUserRepository creates a user repository
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// GetByID retrieves a profile by user id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.Profile, error) {
	var row rows.User
	if err := r.client.From(rows.TableUsers).Select("*").Eq("id", id).Single().Execute(ctx, &row); err != nil {
		return nil, err
	}
	return row.ToProfile(), nil
}

// ListByIDs retrieves the profiles that exist for ids
func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]*users.Profile, error) {
	if len(ids) == 0 {
		return []*users.Profile{}, nil
	}

	var result []rows.User
	if err := r.client.From(rows.TableUsers).Select("*").In("id", ids).Order("name", true).Execute(ctx, &result); err != nil {
		return nil, err
	}

	profiles := make([]*users.Profile, len(result))
	for i, row := range result {
		profiles[i] = row.ToProfile()
	}
	return profiles, nil
}

// Upsert creates the profile or replaces its editable fields
func (r *UserRepository) Upsert(ctx context.Context, profile *users.Profile) (*users.Profile, error) {
	var result []rows.User
	if err := r.client.From(rows.TableUsers).Upsert(ctx, rows.FromUser(profile), "id", &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, backend.New("upsert users", backend.KindUnknown, "", fmt.Errorf("no row returned for %s", profile.ID))
	}
	return result[0].ToProfile(), nil
}

// Exists reports whether id has a profile row
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var result []struct {
		ID string `json:"id"`
	}
	if err := r.client.From(rows.TableUsers).Select("id").Eq("id", id).Limit(1).Execute(ctx, &result); err != nil {
		return false, err
	}
	return len(result) > 0, nil
}

// MessageRepository reads and writes messages through PostgREST
type MessageRepository struct {
	client *Client
}

// NewMessageRepository creates a message repository
func NewMessageRepository(client *Client) *MessageRepository {
	return &MessageRepository{client: client}
}

// Create inserts a message
func (r *MessageRepository) Create(ctx context.Context, msg *messages.Message) error {
	return r.client.From(rows.TableMessages).Insert(ctx, rows.FromMessage(msg), nil)
}

// ListConversation returns messages between a and b, oldest first
func (r *MessageRepository) ListConversation(ctx context.Context, a, b string) ([]*messages.Message, error) {
	var result []rows.Message
	err := r.client.From(rows.TableMessages).
		Select("*").
		Or(fmt.Sprintf("and(author.eq.%s,to_user.eq.%s),and(author.eq.%s,to_user.eq.%s)", a, b, b, a)).
		Order("created_at", true).
		Execute(ctx, &result)
	if err != nil {
		return nil, err
	}

	msgs := make([]*messages.Message, len(result))
	for i, row := range result {
		msgs[i] = row.ToMessage()
	}
	return msgs, nil
}

func toPosts(result []rows.Post) []*posts.Post {
	out := make([]*posts.Post, len(result))
	for i, row := range result {
		out[i] = row.ToPost()
	}
	return out
}

