package postgres

import (
	"context"
	"database/sql"
	"time"

	"Swipeline/internal/backend"
	"Swipeline/internal/core/messages"
)

type postgresMessageRepo struct {
	db *sql.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sql.DB) messages.Repository {
	return &postgresMessageRepo{db: db}
}

// Create inserts a message
func (r *postgresMessageRepo) Create(ctx context.Context, msg *messages.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (id, author_id, to_user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.AuthorID, msg.ToUserID, msg.Content, msg.CreatedAt)
	if err != nil {
		return backend.Wrap("messages.create", err)
	}
	return nil
}

// GetByID retrieves one message
func (r *postgresMessageRepo) GetByID(ctx context.Context, id string) (*messages.Message, error) {
	query := `SELECT id, author_id, to_user_id, content, created_at FROM messages WHERE id = $1`

	var m messages.Message
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.AuthorID, &m.ToUserID, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, backend.Wrap("messages.get", err)
	}
	return &m, nil
}

// ListConversation returns messages between a and b in both directions, oldest first
func (r *postgresMessageRepo) ListConversation(ctx context.Context, a, b string) ([]*messages.Message, error) {
	query := `
		SELECT id, author_id, to_user_id, content, created_at
		FROM messages
		WHERE (author_id = $1 AND to_user_id = $2)
		   OR (author_id = $2 AND to_user_id = $1)
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, a, b)
	if err != nil {
		return nil, backend.Wrap("messages.list", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*messages.Message{}
	for rows.Next() {
		var m messages.Message
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.ToUserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, backend.Wrap("messages.list", err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap("messages.list", err)
	}
	return result, nil
}
