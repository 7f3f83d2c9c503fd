package messages

import (
	"time"

	"Swipeline/internal/core/users"
)

// Message is one direct message between two users
type Message struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ID        string    `json:"id" db:"id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	ToUserID  string    `json:"toUserId" db:"to_user_id"`
	Content   string    `json:"content" db:"content"`
}

// Liker is someone who liked one of the viewer's posts
type Liker = users.Profile

// SendRequest is the input for sending a message
type SendRequest struct {
	Content string `json:"content"`
}

// MaxContentLength is the longest message body accepted, in runes
const MaxContentLength = 2000

// BelongsTo reports whether msg is part of the conversation between me and other
func BelongsTo(msg *Message, me, other string) bool {
	if msg == nil {
		return false
	}
	return (msg.AuthorID == me && msg.ToUserID == other) ||
		(msg.AuthorID == other && msg.ToUserID == me)
}
