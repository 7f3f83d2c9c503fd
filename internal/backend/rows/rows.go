// Package rows holds the rows of the hosted Supabase schema, keyed by column
// name. PostgREST bodies and Realtime records both use this shape.
//
// The hosted tables predate this service: posts live in timelines(author),
// ratings in likes(user_id, timeline_id, type) and messages carry author and
// to_user.
package rows

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"Swipeline/internal/core/messages"
	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
)

// Timestamp accepts the timestamp spellings Postgres and PostgREST emit
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
}

// UnmarshalJSON parses any of the known layouts; timestamps without a zone are UTC
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// MarshalJSON writes RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Table names of the hosted schema
const (
	TablePosts    = "timelines"
	TableRatings  = "likes"
	TableUsers    = "users"
	TableMessages = "messages"
)

// Post is a row of the timelines table
type Post struct {
	CreatedAt   Timestamp `json:"created_at"`
	ID          string    `json:"id"`
	AuthorID    string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Attachments []string  `json:"attachments"`
}

// FromPost converts a post for writing
func FromPost(p *posts.Post) Post {
	return Post{
		CreatedAt:   Timestamp{p.CreatedAt},
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		Title:       p.Title,
		Description: p.Description,
		Attachments: p.Attachments,
	}
}

// ToPost converts the row
func (r Post) ToPost() *posts.Post {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return &posts.Post{
		CreatedAt:   r.CreatedAt.Time,
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		Title:       r.Title,
		Description: r.Description,
		Attachments: attachments,
	}
}

// Rating is a row of the likes table. Skips are stored there too, with
// type "skip".
type Rating struct {
	CreatedAt Timestamp `json:"created_at"`
	ViewerID  string    `json:"user_id"`
	PostID    string    `json:"timeline_id"`
	Kind      string    `json:"type"`
}

// FromRating converts a rating for writing
func FromRating(r *ratings.Rating) Rating {
	return Rating{
		CreatedAt: Timestamp{r.CreatedAt},
		ViewerID:  r.ViewerID,
		PostID:    r.PostID,
		Kind:      string(r.Kind),
	}
}

// User is a row of the users table. updated_at is read when the table has
// it and never written.
type User struct {
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Bio       string     `json:"bio"`
	IconURL   string     `json:"icon_url"`
}

// FromUser converts a profile for writing
func FromUser(p *users.Profile) User {
	return User{
		ID:      p.ID,
		Name:    p.Name,
		Bio:     p.Bio,
		IconURL: p.IconURL,
	}
}

// ToProfile converts the row
func (r User) ToProfile() *users.Profile {
	p := &users.Profile{
		ID:      r.ID,
		Name:    r.Name,
		Bio:     r.Bio,
		IconURL: r.IconURL,
	}
	if r.UpdatedAt != nil {
		p.UpdatedAt = r.UpdatedAt.Time
	}
	return p
}

// Message is a row of the messages table
type Message struct {
	CreatedAt Timestamp `json:"created_at"`
	ID        string    `json:"id"`
	AuthorID  string    `json:"author"`
	ToUserID  string    `json:"to_user"`
	Content   string    `json:"content"`
}

// FromMessage converts a message for writing
func FromMessage(m *messages.Message) Message {
	return Message{
		CreatedAt: Timestamp{m.CreatedAt},
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		ToUserID:  m.ToUserID,
		Content:   m.Content,
	}
}

// ToMessage converts the row
func (r Message) ToMessage() *messages.Message {
	return &messages.Message{
		CreatedAt: r.CreatedAt.Time,
		ID:        r.ID,
		AuthorID:  r.AuthorID,
		ToUserID:  r.ToUserID,
		Content:   r.Content,
	}
}
