package message

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/messages"
	"Swipeline/internal/realtime"
)

type mockMessageService struct {
	mock.Mock
}

func (m *mockMessageService) ListLikers(ctx context.Context, me string) ([]*messages.Liker, error) {
	args := m.Called(ctx, me)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*messages.Liker), args.Error(1)
}

func (m *mockMessageService) Conversation(ctx context.Context, me, other string) ([]*messages.Message, error) {
	args := m.Called(ctx, me, other)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*messages.Message), args.Error(1)
}

func (m *mockMessageService) Send(ctx context.Context, me, other string, req messages.SendRequest) (*messages.Message, error) {
	args := m.Called(ctx, me, other, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messages.Message), args.Error(1)
}

func (m *mockMessageService) Watch(ctx context.Context, me, other string, handler func(*messages.Message)) (messages.Subscription, error) {
	args := m.Called(ctx, me, other, handler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(messages.Subscription), args.Error(1)
}

// asUser stands in for the auth middleware
func asUser(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != "" {
				r = r.WithContext(middleware.SetTestUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(service messages.Service, user string) chi.Router {
	h := NewHandler(service)
	r := chi.NewRouter()
	r.Use(asUser(user))
	r.Get("/api/messages/likers", h.HandleListLikers)
	r.Get("/api/messages/{userID}", h.HandleConversation)
	r.Post("/api/messages/{userID}", h.HandleSend)
	return r
}

func TestListLikers(t *testing.T) {
	service := new(mockMessageService)
	service.On("ListLikers", mock.Anything, "me").Return([]*messages.Liker{{ID: "fan", Name: "Fan"}}, nil)

	w := httptest.NewRecorder()
	newRouter(service, "me").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/messages/likers", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Fan"`)
}

func TestConversation(t *testing.T) {
	service := new(mockMessageService)
	service.On("Conversation", mock.Anything, "me", "fan").Return([]*messages.Message{{ID: "m1", Content: "hi"}}, nil)
	service.On("Conversation", mock.Anything, "", "fan").Return(nil, messages.ErrUnauthenticated)

	w := httptest.NewRecorder()
	newRouter(service, "me").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/messages/fan", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"hi"`)

	w = httptest.NewRecorder()
	newRouter(service, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/messages/fan", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSend(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"sent", `{"content":"hello"}`, nil, http.StatusCreated, ""},
		{"empty", `{"content":"  "}`, messages.ErrEmptyMessage, http.StatusBadRequest, "EmptyMessage"},
		{"self", `{"content":"x"}`, messages.ErrSelfMessage, http.StatusBadRequest, "InvalidRequest"},
		{"too long", `{"content":"x"}`, messages.NewValidationError("content", "too long"), http.StatusBadRequest, "InvalidRequest"},
		{"backend", `{"content":"x"}`, errors.New("down"), http.StatusInternalServerError, "InternalServerError"},
		{"bad json", `{`, nil, http.StatusBadRequest, "InvalidRequest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockMessageService)
			switch {
			case tt.err != nil:
				service.On("Send", mock.Anything, "me", "fan", mock.Anything).Return(nil, tt.err)
			case tt.wantStatus == http.StatusCreated:
				service.On("Send", mock.Anything, "me", "fan", messages.SendRequest{Content: "hello"}).
					Return(&messages.Message{ID: "m1", AuthorID: "me", ToUserID: "fan", Content: "hello"}, nil)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/messages/fan", strings.NewReader(tt.body))
			newRouter(service, "me").ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantError)
		})
	}
}

func TestWatch_StreamsConversation(t *testing.T) {
	hub := realtime.NewHub(nil)
	service := messages.NewMessageService(nil, nil, nil, hub, nil)

	r := chi.NewRouter()
	r.Use(asUser("me"))
	r.Get("/ws/messages/{userID}", NewWatchHandler(service, nil, nil).ServeHTTP)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/messages/fan", nil)
	require.NoError(t, err)
	defer ws.Close()

	messageSubs := func() int {
		_, n := hub.Counts()
		return n
	}
	require.Eventually(t, func() bool { return messageSubs() == 1 }, 5*time.Second, 10*time.Millisecond)

	hub.PublishMessage(&messages.Message{ID: "m0", AuthorID: "other", ToUserID: "me", Content: "not this one"})
	hub.PublishMessage(&messages.Message{ID: "m1", AuthorID: "fan", ToUserID: "me", Content: "hey"})

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame MessageFrame
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, "message", frame.Type)
	assert.Equal(t, "m1", frame.Message.ID)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return messageSubs() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatch_RequiresAuth(t *testing.T) {
	w := httptest.NewRecorder()
	NewWatchHandler(new(mockMessageService), nil, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/messages/fan", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
