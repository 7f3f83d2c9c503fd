package ratings

import (
	"time"
)

// Kind is the decision a viewer made on a post
type Kind string

const (
	KindLike Kind = "like"
	KindSkip Kind = "skip"
)

// Direction is the exit direction of a swipe gesture
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Horizontal reports whether d can commit a rating.
// Vertical swipes are never a rating signal.
func (d Direction) Horizontal() bool {
	return d == DirectionLeft || d == DirectionRight
}

// KindFromDirection maps a committed swipe direction to a rating kind:
// right is a like, anything else that can commit is a skip.
func KindFromDirection(d Direction) Kind {
	if d == DirectionRight {
		return KindLike
	}
	return KindSkip
}

// Rating is one viewer's decision on one post.
// At most one exists per (ViewerID, PostID).
type Rating struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ViewerID  string    `json:"viewerId" db:"viewer_id"`
	PostID    string    `json:"postId" db:"post_id"`
	Kind      Kind      `json:"kind" db:"kind"`
}
