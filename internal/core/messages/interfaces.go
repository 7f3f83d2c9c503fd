package messages

import (
	"context"

	"Swipeline/internal/core/users"
)

// Repository defines message data access
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	// ListConversation returns messages in both directions, oldest first
	ListConversation(ctx context.Context, a, b string) ([]*Message, error)
}

// LikerLister finds users who liked an author's posts
type LikerLister interface {
	ListLikerIDs(ctx context.Context, authorID string) ([]string, error)
}

// ProfileLister hydrates user ids into profiles
type ProfileLister interface {
	ListProfiles(ctx context.Context, ids []string) ([]*users.Profile, error)
}

// Subscriber delivers "message inserted" events from the change feed
type Subscriber interface {
	SubscribeMessageInserts(ctx context.Context, handler func(*Message)) (Subscription, error)
}

// Subscription is a live change-feed subscription
type Subscription interface {
	Unsubscribe() error
}

// Service defines the messaging screen operations
type Service interface {
	ListLikers(ctx context.Context, me string) ([]*Liker, error)
	Conversation(ctx context.Context, me, other string) ([]*Message, error)
	Send(ctx context.Context, me, other string, req SendRequest) (*Message, error)

	// Watch delivers new messages between me and other until the
	// subscription is cancelled
	Watch(ctx context.Context, me, other string, handler func(*Message)) (Subscription, error)
}
