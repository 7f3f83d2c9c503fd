package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
	"Swipeline/internal/metrics"
)

// feedLoads reads swipeline_feed_loads_total for outcome from the app registry
func feedLoads(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "swipeline_feed_loads_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func post(id string, age time.Duration) *posts.Post {
	return &posts.Post{
		ID:          id,
		AuthorID:    "author-" + id,
		Title:       "title " + id,
		Attachments: []string{},
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(-age),
	}
}

func ids(list []*posts.Post) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func cardIDs(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Post.ID
	}
	return out
}

type mockPostLister struct {
	mock.Mock
}

func (m *mockPostLister) ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error) {
	args := m.Called(ctx, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*posts.Post), args.Error(1)
}

type mockRatedLister struct {
	mock.Mock
}

func (m *mockRatedLister) ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// memoryPosts answers ListRecent from a fixed newest-first list
type memoryPosts struct {
	all []*posts.Post
}

func (m *memoryPosts) ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := []*posts.Post{}
	for _, p := range m.all {
		if _, ok := skip[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// gatedPosts blocks ListRecent until release is closed
type gatedPosts struct {
	list    []*posts.Post
	err     error
	started chan struct{}
	release chan struct{}
}

func newGatedPosts(list []*posts.Post, err error) *gatedPosts {
	return &gatedPosts{
		list:    list,
		err:     err,
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (g *gatedPosts) ListRecent(ctx context.Context, exclude []string) ([]*posts.Post, error) {
	g.started <- struct{}{}
	<-g.release
	return g.list, g.err
}

type noRatings struct{}

func (noRatings) ListRatedPostIDs(ctx context.Context, viewerID string) ([]string, error) {
	return nil, nil
}

type recordedRating struct {
	viewer string
	post   string
	dir    ratings.Direction
}

type spyRatings struct {
	mu    sync.Mutex
	calls []recordedRating
}

func (s *spyRatings) Record(ctx context.Context, viewerID, postID string, dir ratings.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedRating{viewer: viewerID, post: postID, dir: dir})
	return nil
}

func (s *spyRatings) Calls() []recordedRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedRating, len(s.calls))
	copy(out, s.calls)
	return out
}

// fakeFeed is an in-process change feed
type fakeFeed struct {
	mu          sync.Mutex
	handlers    map[int]func(*posts.Post)
	next        int
	subscribes  int
	unsubscribe error
	subscribe   error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{handlers: make(map[int]func(*posts.Post))}
}

func (f *fakeFeed) SubscribePostInserts(ctx context.Context, handler func(*posts.Post)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	if f.subscribe != nil {
		return nil, f.subscribe
	}
	f.next++
	f.handlers[f.next] = handler
	return &fakeSubscription{feed: f, id: f.next}, nil
}

func (f *fakeFeed) Publish(p *posts.Post) {
	f.mu.Lock()
	handlers := make([]func(*posts.Post), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(p)
	}
}

func (f *fakeFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeFeed) Subscribes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes
}

type fakeSubscription struct {
	feed *fakeFeed
	id   int
}

func (s *fakeSubscription) Unsubscribe() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	delete(s.feed.handlers, s.id)
	return s.feed.unsubscribe
}

type mockAuthors struct {
	mock.Mock
}

func (m *mockAuthors) GetAuthor(ctx context.Context, id string) (*users.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Author), args.Error(1)
}

// changeCounter counts OnChange calls
type changeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *changeCounter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *changeCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
