package posts

import (
	"time"
)

// Post is a single timeline entry shown on a swipe card
type Post struct {
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	ID          string    `json:"id" db:"id"`
	AuthorID    string    `json:"authorId" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Attachments []string  `json:"attachments" db:"attachments"`
}

// CreatePostRequest is the input for creating a post
type CreatePostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Attachments []string `json:"attachments,omitempty"`
}

// Limits enforced on post creation
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxAttachments       = 4
	// MaxAttachmentURLLength bounds one attachment URL in bytes
	MaxAttachmentURLLength = 2048
)
