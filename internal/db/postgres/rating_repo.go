package postgres

import (
	"context"
	"database/sql"
	"time"

	"Swipeline/internal/backend"
	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
)

type postgresRatingRepo struct {
	db *sql.DB
}

// NewRatingRepository creates a new PostgreSQL rating repository
func NewRatingRepository(db *sql.DB) ratings.Repository {
	return &postgresRatingRepo{db: db}
}

// Create inserts a rating. A second rating for the same viewer and post fails
// on unique_viewer_post and comes back as a UniqueViolation.
func (r *postgresRatingRepo) Create(ctx context.Context, rating *ratings.Rating) error {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO ratings (viewer_id, post_id, kind, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, rating.ViewerID, rating.PostID, string(rating.Kind), rating.CreatedAt)
	if err != nil {
		return backend.Wrap("ratings.create", err)
	}
	return nil
}

// ListRatedPostIDs returns every post id the viewer rated, likes and skips alike
func (r *postgresRatingRepo) ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT post_id FROM ratings WHERE viewer_id = $1`, viewerID)
	if err != nil {
		return nil, backend.Wrap("ratings.list_rated", err)
	}
	return scanStrings("ratings.list_rated", rows)
}

// ListLikedPosts returns posts the viewer liked, most recent like first
func (r *postgresRatingRepo) ListLikedPosts(ctx context.Context, viewerID string) ([]*posts.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM ratings r
		JOIN posts p ON p.id = r.post_id
		WHERE r.viewer_id = $1 AND r.kind = 'like'
		ORDER BY r.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, backend.Wrap("ratings.list_liked", err)
	}
	return scanPosts("ratings.list_liked", rows)
}

// ListLikerIDs returns the distinct viewers who liked anything authorID wrote
func (r *postgresRatingRepo) ListLikerIDs(ctx context.Context, authorID string) ([]string, error) {
	query := `
		SELECT DISTINCT r.viewer_id
		FROM ratings r
		JOIN posts p ON p.id = r.post_id
		WHERE p.author_id = $1 AND r.kind = 'like' AND r.viewer_id <> $1
		ORDER BY r.viewer_id`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, backend.Wrap("ratings.list_likers", err)
	}
	return scanStrings("ratings.list_likers", rows)
}

func scanStrings(op string, rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	result := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, backend.Wrap(op, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap(op, err)
	}
	return result, nil
}
