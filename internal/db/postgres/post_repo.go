package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"Swipeline/internal/backend"
	"Swipeline/internal/core/posts"
)

const postColumns = `p.id, p.author_id, p.title, p.description, p.attachments, p.created_at`

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// ListRecent returns every post newest first, skipping ids in exclude.
// The exclusion set is sent as one array parameter.
func (r *postgresPostRepo) ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error) {
	if exclude == nil {
		// a NULL array would make <> ALL match nothing
		exclude = []string{}
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.id <> ALL($1)
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(exclude))
	if err != nil {
		return nil, backend.Wrap("posts.list_recent", err)
	}
	return scanPosts("posts.list_recent", rows)
}

// Create inserts a post
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Attachments == nil {
		post.Attachments = []string{}
	}

	query := `
		INSERT INTO posts (id, author_id, title, description, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.AuthorID, post.Title, post.Description,
		pq.Array(post.Attachments), post.CreatedAt,
	)
	if err != nil {
		return backend.Wrap("posts.create", err)
	}
	return nil
}

// GetByID retrieves a post by id
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, backend.Wrap("posts.get", err)
	}
	return post, nil
}

// ListByAuthor returns an author's posts, newest first
func (r *postgresPostRepo) ListByAuthor(ctx context.Context, authorID string) ([]*posts.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, backend.Wrap("posts.list_by_author", err)
	}
	return scanPosts("posts.list_by_author", rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		post        posts.Post
		attachments pq.StringArray
	)
	err := row.Scan(&post.ID, &post.AuthorID, &post.Title, &post.Description, &attachments, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	post.Attachments = []string(attachments)
	if post.Attachments == nil {
		post.Attachments = []string{}
	}
	return &post, nil
}

func scanPosts(op string, rows *sql.Rows) ([]*posts.Post, error) {
	defer func() { _ = rows.Close() }()

	result := []*posts.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, backend.Wrap(op, err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap(op, err)
	}
	return result, nil
}
