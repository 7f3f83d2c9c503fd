package feed

import (
	"context"
	"log/slog"
	"sync"

	"Swipeline/internal/core/posts"
)

// Listener merges change-feed post inserts into a store. It subscribes at most
// once per lifetime. Inserts are prepended without checking whether the viewer
// already rated the post.
type Listener struct {
	sub        Subscriber
	store      *Store
	banner     *Banner
	bannerText string
	onInsert   func(*posts.Post)
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	handle  Subscription
}

// NewListener creates a listener. onInsert may be nil.
func NewListener(sub Subscriber, store *Store, banner *Banner, bannerText string, onInsert func(*posts.Post), logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if bannerText == "" {
		bannerText = DefaultBannerText
	}
	return &Listener{
		sub:        sub,
		store:      store,
		banner:     banner,
		bannerText: bannerText,
		onInsert:   onInsert,
		logger:     logger,
	}
}

// Start subscribes to post inserts. Calling it again is a no-op, as is
// calling it after Stop. A failed subscription is logged; the feed keeps
// working without live updates.
func (l *Listener) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started || l.stopped || l.sub == nil {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	handle, err := l.sub.SubscribePostInserts(ctx, l.onEvent)
	if err != nil {
		l.logger.Error("failed to subscribe to post inserts", "error", err)
		return
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		l.unsubscribe(handle)
		return
	}
	l.handle = handle
	l.mu.Unlock()
}

// Stop unsubscribes. No events are delivered to the store afterwards.
func (l *Listener) Stop() {
	l.mu.Lock()
	handle := l.handle
	l.handle = nil
	l.stopped = true
	l.mu.Unlock()

	if handle != nil {
		l.unsubscribe(handle)
	}
}

func (l *Listener) unsubscribe(handle Subscription) {
	if err := handle.Unsubscribe(); err != nil {
		l.logger.Warn("failed to unsubscribe from post inserts", "error", err)
	}
}

func (l *Listener) onEvent(post *posts.Post) {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped || post == nil {
		return
	}

	if !l.store.Prepend(post) {
		l.logger.Debug("live insert already in feed", "post", post.ID)
		return
	}
	if l.banner != nil {
		l.banner.Show(l.bannerText)
	}
	if l.onInsert != nil {
		l.onInsert(post)
	}
}
