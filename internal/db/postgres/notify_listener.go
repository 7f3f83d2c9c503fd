package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/realtime"
)

// Channels raised by the insert triggers in the migrations
const (
	ChannelPosts    = "posts_insert"
	ChannelMessages = "messages_insert"
)

// notifyPayload is what the insert triggers send. Rows are read back by id
// since NOTIFY payloads are capped at 8000 bytes.
type notifyPayload struct {
	ID string `json:"id"`
}

// NotifyConnector turns LISTEN/NOTIFY insert events into hub events
type NotifyConnector struct {
	posts        posts.Repository
	messages     *postgresMessageRepo
	sink         realtime.Sink
	logger       *slog.Logger
	dsn          string
	minReconnect time.Duration
	maxReconnect time.Duration
	pingInterval time.Duration
	fetchTimeout time.Duration
}

// NewNotifyConnector creates a connector that listens on dsn and reads the
// inserted rows through db
func NewNotifyConnector(dsn string, db *sql.DB, sink realtime.Sink, logger *slog.Logger) *NotifyConnector {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyConnector{
		posts:        NewPostRepository(db),
		messages:     &postgresMessageRepo{db: db},
		sink:         sink,
		logger:       logger,
		dsn:          dsn,
		fetchTimeout: 5 * time.Second,
		minReconnect: 5 * time.Second,
		maxReconnect: time.Minute,
		pingInterval: 90 * time.Second,
	}
}

// Start listens until ctx is done. The pq listener reconnects on its own;
// notifications sent while disconnected are lost.
func (c *NotifyConnector) Start(ctx context.Context) error {
	listener := pq.NewListener(c.dsn, c.minReconnect, c.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			c.logger.Info("postgres listener connected")
		case pq.ListenerEventDisconnected:
			c.logger.Warn("postgres listener disconnected", "error", err)
		case pq.ListenerEventReconnected:
			c.logger.Info("postgres listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			c.logger.Warn("postgres listener connection attempt failed", "error", err)
		}
	})
	defer func() {
		if err := listener.Close(); err != nil {
			c.logger.Warn("failed to close postgres listener", "error", err)
		}
	}()

	for _, channel := range []string{ChannelPosts, ChannelMessages} {
		if err := listener.Listen(channel); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", channel, err)
		}
	}
	c.logger.Info("listening for inserts", "channels", []string{ChannelPosts, ChannelMessages})

	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("postgres listener shutting down")
			return ctx.Err()
		case n := <-listener.Notify:
			// nil means the connection was re-established
			if n == nil {
				continue
			}
			if err := c.Dispatch(ctx, n.Channel, []byte(n.Extra)); err != nil {
				c.logger.Warn("failed to handle notification", "channel", n.Channel, "error", err)
			}
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				c.logger.Warn("postgres listener ping failed", "error", err)
			}
		}
	}
}

// Dispatch reads the row named by one notification and publishes it
func (c *NotifyConnector) Dispatch(ctx context.Context, channel string, payload []byte) error {
	var n notifyPayload
	if err := json.Unmarshal(payload, &n); err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.ID == "" {
		return fmt.Errorf("notification on %s has no id", channel)
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	switch channel {
	case ChannelPosts:
		post, err := c.posts.GetByID(ctx, n.ID)
		if err != nil {
			return fmt.Errorf("failed to read post %s: %w", n.ID, err)
		}
		c.sink.PublishPost(post)
	case ChannelMessages:
		msg, err := c.messages.GetByID(ctx, n.ID)
		if err != nil {
			return fmt.Errorf("failed to read message %s: %w", n.ID, err)
		}
		c.sink.PublishMessage(msg)
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
	return nil
}
