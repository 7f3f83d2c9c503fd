package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoFrame struct {
	Type string `json:"type"`
	Body string `json:"body,omitempty"`
	N    int64  `json:"n,omitempty"`
}

// newEchoServer echoes every text frame back and renders a counter on demand
func newEchoServer(t *testing.T, ctx context.Context, origins []string) (*httptest.Server, chan struct{}) {
	finished := make(chan struct{})
	upgrader := NewUpgrader(origins)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var renders atomic.Int64
		conn := New(ws, func() any {
			return echoFrame{Type: "render", N: renders.Add(1)}
		}, nil)

		conn.Run(ctx, func(data []byte) {
			if string(data) == "render" {
				conn.Invalidate()
				return
			}
			conn.Send(echoFrame{Type: "echo", Body: string(data)})
		})
		close(finished)
	}))
	t.Cleanup(srv.Close)
	return srv, finished
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestConn_EchoAndRender(t *testing.T) {
	srv, finished := newEchoServer(t, context.Background(), nil)
	ws := dial(t, srv, nil)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))
	var got echoFrame
	require.NoError(t, ws.ReadJSON(&got))
	assert.Equal(t, echoFrame{Type: "echo", Body: "hello"}, got)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("render")))
	require.NoError(t, ws.ReadJSON(&got))
	assert.Equal(t, "render", got.Type)
	assert.Equal(t, int64(1), got.N)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not notice the close")
	}
}

func TestConn_ContextEndsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv, finished := newEchoServer(t, ctx, nil)
	ws := dial(t, srv, nil)

	cancel()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end with its context")
	}

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestConn_SendAfterCloseIsDropped(t *testing.T) {
	serverConn := make(chan *Conn, 1)
	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := New(ws, nil, nil)
		conn.Close()
		serverConn <- conn
		_ = ws.Close()
	}))
	defer srv.Close()

	dial(t, srv, nil)
	conn := <-serverConn
	assert.False(t, conn.Send(echoFrame{Type: "late"}))
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	u := NewUpgrader([]string{"https://app.example/"})

	req := httptest.NewRequest(http.MethodGet, "/ws/feed", nil)
	assert.True(t, u.CheckOrigin(req), "no origin")

	req.Header.Set("Origin", "https://app.example")
	assert.True(t, u.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, u.CheckOrigin(req))

	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
}
