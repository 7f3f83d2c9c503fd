package account

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/account"
	"Swipeline/internal/core/posts"
)

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) Get(ctx context.Context, viewerID string) (*account.Overview, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Overview), args.Error(1)
}

func TestGetAccount(t *testing.T) {
	service := new(mockGetter)
	service.On("Get", mock.Anything, "V").Return(&account.Overview{
		Posts: []*posts.Post{{ID: "mine"}},
		Liked: []*posts.Post{},
	}, nil)
	service.On("Get", mock.Anything, "").Return(nil, account.ErrUnauthenticated)
	service.On("Get", mock.Anything, "broken").Return(nil, errors.New("timeout"))
	h := NewGetAccountHandler(service)

	get := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/account", nil)
		if user != "" {
			req = req.WithContext(middleware.SetTestUserID(req.Context(), user))
		}
		w := httptest.NewRecorder()
		h.HandleGetAccount(w, req)
		return w
	}

	w := get("V")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked":[]`)
	assert.NotContains(t, w.Body.String(), `"profile"`)

	assert.Equal(t, http.StatusUnauthorized, get("").Code)
	assert.Equal(t, http.StatusInternalServerError, get("broken").Code)
}
