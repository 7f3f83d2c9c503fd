package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"Swipeline/internal/backend"
	"Swipeline/internal/core/users"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

// GetByID retrieves a profile by user id
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.Profile, error) {
	query := `SELECT id, name, bio, icon_url, updated_at FROM users WHERE id = $1`

	var p users.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Bio, &p.IconURL, &p.UpdatedAt)
	if err != nil {
		return nil, backend.Wrap("users.get", err)
	}
	return &p, nil
}

// ListByIDs retrieves the profiles that exist for ids, ordered by name
func (r *postgresUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*users.Profile, error) {
	if len(ids) == 0 {
		return []*users.Profile{}, nil
	}

	// Use ANY($1) with pq.Array so the whole batch is one query
	query := `
		SELECT id, name, bio, icon_url, updated_at
		FROM users
		WHERE id = ANY($1)
		ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, backend.Wrap("users.list", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*users.Profile{}
	for rows.Next() {
		var p users.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Bio, &p.IconURL, &p.UpdatedAt); err != nil {
			return nil, backend.Wrap("users.list", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap("users.list", err)
	}
	return result, nil
}

// Upsert creates the profile or replaces its editable fields
func (r *postgresUserRepo) Upsert(ctx context.Context, profile *users.Profile) (*users.Profile, error) {
	query := `
		INSERT INTO users (id, name, bio, icon_url, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			bio = EXCLUDED.bio,
			icon_url = EXCLUDED.icon_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, name, bio, icon_url, updated_at`

	var p users.Profile
	err := r.db.QueryRowContext(ctx, query,
		profile.ID, profile.Name, profile.Bio, profile.IconURL, profile.UpdatedAt,
	).Scan(&p.ID, &p.Name, &p.Bio, &p.IconURL, &p.UpdatedAt)
	if err != nil {
		return nil, backend.Wrap("users.upsert", err)
	}
	return &p, nil
}

// Exists reports whether id has a profile row
func (r *postgresUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, backend.Wrap("users.exists", err)
	}
	return exists, nil
}
