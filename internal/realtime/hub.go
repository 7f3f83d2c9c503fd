// Package realtime fans change-feed inserts out to live sessions.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"Swipeline/internal/core/feed"
	"Swipeline/internal/core/messages"
	"Swipeline/internal/core/posts"
	"Swipeline/internal/metrics"
)

// Sink receives decoded insert events from a change-feed connector
type Sink interface {
	PublishPost(post *posts.Post)
	PublishMessage(msg *messages.Message)
}

// Hub is an in-process fan-out of insert events. Handlers run on the
// publisher's goroutine and must not block.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	next     uint64
	posts    map[uint64]func(*posts.Post)
	messages map[uint64]func(*messages.Message)
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:   logger,
		posts:    make(map[uint64]func(*posts.Post)),
		messages: make(map[uint64]func(*messages.Message)),
	}
}

// SubscribePostInserts registers handler until the subscription is cancelled
// or ctx is done
func (h *Hub) SubscribePostInserts(ctx context.Context, handler func(*posts.Post)) (feed.Subscription, error) {
	h.mu.Lock()
	h.next++
	id := h.next
	h.posts[id] = handler
	h.mu.Unlock()

	return h.track(ctx, func() {
		h.mu.Lock()
		delete(h.posts, id)
		h.mu.Unlock()
	}), nil
}

// SubscribeMessageInserts registers handler until the subscription is
// cancelled or ctx is done
func (h *Hub) SubscribeMessageInserts(ctx context.Context, handler func(*messages.Message)) (messages.Subscription, error) {
	h.mu.Lock()
	h.next++
	id := h.next
	h.messages[id] = handler
	h.mu.Unlock()

	return h.track(ctx, func() {
		h.mu.Lock()
		delete(h.messages, id)
		h.mu.Unlock()
	}), nil
}

// PublishPost delivers post to every post subscriber
func (h *Hub) PublishPost(post *posts.Post) {
	if post == nil || post.ID == "" {
		return
	}
	metrics.RecordLiveInsert("posts")

	h.mu.RLock()
	handlers := make([]func(*posts.Post), 0, len(h.posts))
	for _, fn := range h.posts {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		h.deliver(func() { fn(post) })
	}
}

// PublishMessage delivers msg to every message subscriber
func (h *Hub) PublishMessage(msg *messages.Message) {
	if msg == nil || msg.ID == "" {
		return
	}
	metrics.RecordLiveInsert("messages")

	h.mu.RLock()
	handlers := make([]func(*messages.Message), 0, len(h.messages))
	for _, fn := range h.messages {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		h.deliver(func() { fn(msg) })
	}
}

// Counts returns the number of post and message subscribers
func (h *Hub) Counts() (postSubs, messageSubs int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.posts), len(h.messages)
}

// deliver isolates subscribers from each other's panics
func (h *Hub) deliver(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("realtime subscriber panicked", "panic", r)
		}
	}()
	fn()
}

func (h *Hub) track(ctx context.Context, remove func()) *subscription {
	sub := &subscription{remove: remove}
	sub.stop = context.AfterFunc(ctx, sub.release)
	return sub
}

type subscription struct {
	remove func()
	stop   func() bool
	once   sync.Once
}

// Unsubscribe removes the handler. It is safe to call more than once.
func (s *subscription) Unsubscribe() error {
	s.stop()
	s.release()
	return nil
}

func (s *subscription) release() {
	s.once.Do(s.remove)
}
