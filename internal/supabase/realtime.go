package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Swipeline/internal/backend/rows"
	"Swipeline/internal/realtime"
)

// Tables whose inserts are forwarded to the hub
var realtimeTables = []string{rows.TablePosts, rows.TableMessages}

// phoenixMessage is one frame of the Phoenix channel protocol
type phoenixMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
	JoinRef *string         `json:"join_ref,omitempty"`
}

// changePayload covers both the legacy per-table INSERT event and the
// postgres_changes event, which nests the same fields under data
type changePayload struct {
	Data   *changePayload  `json:"data,omitempty"`
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

// RealtimeConnector subscribes to post and message inserts on Supabase
// Realtime and feeds them to a sink. It reconnects until its context ends.
type RealtimeConnector struct {
	sink           realtime.Sink
	logger         *slog.Logger
	wsURL          string
	heartbeat      time.Duration
	reconnectDelay time.Duration

	writeMu sync.Mutex
	ref     int
}

// NewRealtimeConnector creates a connector for the project at projectURL
func NewRealtimeConnector(projectURL, apiKey string, sink realtime.Sink, logger *slog.Logger) (*RealtimeConnector, error) {
	wsURL, err := realtimeURL(projectURL, apiKey)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RealtimeConnector{
		sink:           sink,
		logger:         logger,
		wsURL:          wsURL,
		heartbeat:      30 * time.Second,
		reconnectDelay: 5 * time.Second,
	}, nil
}

func realtimeURL(projectURL, apiKey string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(projectURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid supabase URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported supabase URL scheme %q", u.Scheme)
	}
	u.Path += "/realtime/v1/websocket"
	u.RawQuery = url.Values{"apikey": {apiKey}, "vsn": {"1.0.0"}}.Encode()
	return u.String(), nil
}

// Start runs until ctx is done, reconnecting after failures
func (c *RealtimeConnector) Start(ctx context.Context) error {
	c.logger.Info("starting supabase realtime connector")

	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			c.logger.Info("supabase realtime connector shutting down")
			return ctx.Err()
		}
		c.logger.Warn("supabase realtime connection error, retrying", "error", err, "delay", c.reconnectDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *RealtimeConnector) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to realtime: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			c.logger.Debug("failed to close realtime connection", "error", closeErr)
		}
	}()

	for _, table := range realtimeTables {
		if err := c.join(conn, table); err != nil {
			return err
		}
	}
	c.logger.Info("connected to supabase realtime", "tables", realtimeTables)

	// every heartbeat gets a reply, so silence for two intervals means a dead link
	deadline := 2 * c.heartbeat
	if err := conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(c.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				// unblock the read loop
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := c.send(conn, "phoenix", "heartbeat", map[string]any{}, false); err != nil {
					c.logger.Warn("failed to send realtime heartbeat", "error", err)
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		if err := conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		if err := c.HandleMessage(data); err != nil {
			c.logger.Warn("failed to handle realtime message", "error", err)
		}
	}
}

// join subscribes to inserts on one table
func (c *RealtimeConnector) join(conn *websocket.Conn, table string) error {
	topic := "realtime:public:" + table
	payload := map[string]any{
		"config": map[string]any{
			"postgres_changes": []map[string]string{
				{"event": "INSERT", "schema": "public", "table": table},
			},
		},
	}
	if err := c.send(conn, topic, "phx_join", payload, true); err != nil {
		return fmt.Errorf("failed to join %s: %w", topic, err)
	}
	return nil
}

func (c *RealtimeConnector) send(conn *websocket.Conn, topic, event string, payload any, join bool) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ref++
	ref := strconv.Itoa(c.ref)
	msg := map[string]any{
		"topic":   topic,
		"event":   event,
		"payload": payload,
		"ref":     ref,
	}
	if join {
		msg["join_ref"] = ref
	}

	if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// HandleMessage decodes one frame and publishes any insert it carries.
// Replies, heartbeats and system messages are ignored.
func (c *RealtimeConnector) HandleMessage(data []byte) error {
	var msg phoenixMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	switch msg.Event {
	case "phx_reply":
		var reply struct {
			Status   string          `json:"status"`
			Response json.RawMessage `json:"response"`
		}
		if err := json.Unmarshal(msg.Payload, &reply); err == nil && reply.Status == "error" {
			return fmt.Errorf("channel %s rejected: %s", msg.Topic, string(reply.Response))
		}
		return nil
	case "phx_error", "phx_close":
		return fmt.Errorf("channel %s closed by server (%s)", msg.Topic, msg.Event)
	case "INSERT", "postgres_changes":
	default:
		return nil
	}

	var change changePayload
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		return fmt.Errorf("failed to decode change: %w", err)
	}
	if change.Data != nil {
		change = *change.Data
	}
	if change.Type != "INSERT" {
		return nil
	}

	switch change.Table {
	case rows.TablePosts:
		var row rows.Post
		if err := json.Unmarshal(change.Record, &row); err != nil {
			return fmt.Errorf("failed to decode post record: %w", err)
		}
		c.sink.PublishPost(row.ToPost())
	case rows.TableMessages:
		var row rows.Message
		if err := json.Unmarshal(change.Record, &row); err != nil {
			return fmt.Errorf("failed to decode message record: %w", err)
		}
		c.sink.PublishMessage(row.ToMessage())
	}
	return nil
}
