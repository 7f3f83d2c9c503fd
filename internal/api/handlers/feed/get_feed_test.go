package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Swipeline/internal/api/middleware"
	corefeed "Swipeline/internal/core/feed"
	"Swipeline/internal/core/posts"
	"Swipeline/internal/metrics"
)

type staticPosts []*posts.Post

func (s staticPosts) ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error) {
	return s, nil
}

type noRatings struct{}

func (noRatings) ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error) {
	return nil, nil
}

func okFeedLoads(t *testing.T) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "swipeline_feed_loads_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == "ok" {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, viewerID string) ([]*posts.Post, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*posts.Post), args.Error(1)
}

func TestGetFeed(t *testing.T) {
	loader := new(mockLoader)
	loader.On("Load", mock.Anything, "V").Return([]*posts.Post{{ID: "P4"}, {ID: "P3"}}, nil)
	loader.On("Load", mock.Anything, "").Return([]*posts.Post{}, nil)
	h := NewGetFeedHandler(loader, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req = req.WithContext(middleware.SetTestUserID(req.Context(), "V"))
	w := httptest.NewRecorder()
	h.HandleGetFeed(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"P4"`)

	w = httptest.NewRecorder()
	h.HandleGetFeed(w, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())
}

func TestGetFeed_Failure(t *testing.T) {
	loader := new(mockLoader)
	loader.On("Load", mock.Anything, "").Return(nil, errors.New("timeout"))

	w := httptest.NewRecorder()
	NewGetFeedHandler(loader, nil).HandleGetFeed(w, httptest.NewRequest(http.MethodGet, "/api/feed", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "FeedUnavailable")
}

func TestGetFeed_CountsOneLoadPerRequest(t *testing.T) {
	loader := corefeed.NewLoader(staticPosts{{ID: "P1"}}, noRatings{})
	h := NewGetFeedHandler(loader, nil)
	before := okFeedLoads(t)

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req = req.WithContext(middleware.SetTestUserID(req.Context(), "V"))
	w := httptest.NewRecorder()
	h.HandleGetFeed(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, okFeedLoads(t))
}
