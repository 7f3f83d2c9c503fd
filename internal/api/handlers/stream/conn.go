// Package stream pumps JSON frames over a server-side websocket.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 32
)

// NewUpgrader returns an upgrader that accepts the given browser origins.
// "*" accepts any origin. Requests without an Origin header (native clients)
// are always accepted.
func NewUpgrader(origins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	anyOrigin := false
	for _, origin := range origins {
		if origin == "*" {
			anyOrigin = true
		}
		allowed[strings.TrimSuffix(origin, "/")] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || anyOrigin || allowed[origin]
		},
	}
}

// Conn is one websocket peer. Frames are written by a single writer
// goroutine; Send and Invalidate never block.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger
	render func() any

	send      chan any
	dirty     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New wraps an upgraded connection. render builds the frame written after
// Invalidate and may be nil.
func New(ws *websocket.Conn, render func() any, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		ws:     ws,
		logger: logger,
		render: render,
		send:   make(chan any, sendBuffer),
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Send queues a frame. It reports false when the frame was dropped because
// the peer is gone or not keeping up.
func (c *Conn) Send(frame any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn("dropping frame for slow websocket peer", "remote", c.ws.RemoteAddr().String())
		return false
	}
}

// Invalidate schedules a render. Calls made before the render runs coalesce.
func (c *Conn) Invalidate() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// Close starts shutting the connection down. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Run pumps frames until the peer goes away or ctx ends. handle is called for
// every text frame, on the reading goroutine.
func (c *Conn) Run(ctx context.Context, handle func(data []byte)) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	c.readLoop(handle)
	c.Close()
	<-writerDone
}

func (c *Conn) readLoop(handle func([]byte)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug("websocket closed unexpectedly", "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		if kind == websocket.TextMessage && handle != nil {
			handle(data)
		}
	}
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() {
		// unblocks the reader
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case frame := <-c.send:
			if err := c.write(frame); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				c.Close()
				return
			}

		case <-c.dirty:
			if c.render == nil {
				continue
			}
			if err := c.write(c.render()); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				c.Close()
				return
			}

		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("websocket ping failed", "error", err)
				c.Close()
				return
			}
		}
	}
}

func (c *Conn) write(frame any) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(frame)
}
