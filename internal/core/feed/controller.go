package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
	"Swipeline/internal/metrics"
)

// DefaultWriteTimeout bounds a background rating write
const DefaultWriteTimeout = 10 * time.Second

// Deps are the collaborators a controller is built from
type Deps struct {
	Loader     *Loader
	Ratings    RatingWriter
	Subscriber Subscriber
	Authors    AuthorLookup
	Logger     *slog.Logger
}

// Options tune a controller. The zero value is usable.
type Options struct {
	// OnChange is called after every visible state change. It must not call
	// back into OnActivate or OnDeactivate.
	OnChange       func()
	BannerText     string
	Threshold      Threshold
	BannerDuration time.Duration
	WriteTimeout   time.Duration
}

// View is what a surface renders
type View struct {
	Cards   []Card      `json:"cards"`
	Banner  BannerState `json:"banner"`
	Loading bool        `json:"loading"`
}

// mount is everything owned by one activation
type mount struct {
	ctx       context.Context
	cancel    context.CancelFunc
	store     *Store
	projector *Projector
	banner    *Banner
	listener  *Listener
	viewerID  string
	gen       uint64
	loading   bool
}

// Controller owns the feed of one swipe session. Between OnActivate and
// OnDeactivate it holds a store, merges live inserts into it and turns
// gestures into ratings.
//
// Every async completion checks that its activation is still current before
// touching state, so nothing changes after OnDeactivate returns.
type Controller struct {
	deps   Deps
	opts   Options
	logger *slog.Logger

	mu  sync.Mutex
	gen uint64
	cur *mount
	wg  sync.WaitGroup
}

// NewController creates an inactive controller
func NewController(deps Deps, opts Options) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Threshold == (Threshold{}) {
		opts.Threshold = DefaultThreshold
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	return &Controller{
		deps:   deps,
		opts:   opts,
		logger: logger,
	}
}

// OnActivate starts the live listener and the initial load for viewerID
// (empty for an anonymous viewer). Calling it again while active is a no-op.
func (c *Controller) OnActivate(ctx context.Context, viewerID string) {
	c.mu.Lock()
	if c.cur != nil {
		c.mu.Unlock()
		return
	}

	c.gen++
	m := &mount{gen: c.gen, viewerID: viewerID, loading: true}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.store = NewStore()
	m.banner = NewBanner(c.opts.BannerDuration, func() { c.notify(m) })
	m.projector = NewProjector(m.store, c.opts.Threshold, func(postID string, dir ratings.Direction) {
		c.decide(m, postID, dir)
	})
	m.listener = NewListener(c.deps.Subscriber, m.store, m.banner, c.opts.BannerText,
		func(*posts.Post) { c.notify(m) }, c.logger)
	c.cur = m
	c.wg.Add(1)
	c.mu.Unlock()

	metrics.SessionStarted()
	c.logger.Debug("feed activated", "viewer", viewerID, "generation", m.gen)

	m.listener.Start(m.ctx)
	go c.load(m)
	c.notify(m)
}

// OnDeactivate tears down the current activation. Pending loads and author
// lookups are discarded; rating writes already issued still complete.
// Calling it while inactive is a no-op.
func (c *Controller) OnDeactivate() {
	c.mu.Lock()
	m := c.cur
	c.cur = nil
	c.mu.Unlock()

	if m == nil {
		return
	}

	m.cancel()
	m.listener.Stop()
	m.banner.Hide()
	metrics.SessionEnded()
	c.logger.Debug("feed deactivated", "viewer", m.viewerID, "generation", m.gen)
}

// Active reports whether the controller is between OnActivate and OnDeactivate
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur != nil
}

// Refresh reloads the feed in the background, replacing it wholesale.
// A load that finishes after a live insert drops the inserted post.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	m := c.cur
	if m == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	m.loading = true
	c.wg.Add(1)
	c.mu.Unlock()

	go c.load(m)
	c.notify(m)
	return nil
}

// BeginDrag starts a drag on the top card
func (c *Controller) BeginDrag(id string) error {
	m, err := c.current()
	if err != nil {
		return err
	}
	if err := m.projector.BeginDrag(id); err != nil {
		return err
	}
	c.notify(m)
	return nil
}

// Release ends a drag on the top card
func (c *Controller) Release(id string, g Gesture) (ReleaseOutcome, error) {
	m, err := c.current()
	if err != nil {
		return "", err
	}
	outcome, _, err := m.projector.Release(id, g)
	if err != nil {
		return "", err
	}
	c.notify(m)
	return outcome, nil
}

// Commit swipes the top card in dir
func (c *Controller) Commit(id string, dir ratings.Direction) (ReleaseOutcome, error) {
	m, err := c.current()
	if err != nil {
		return "", err
	}
	outcome, err := m.projector.Commit(id, dir)
	if err != nil {
		return "", err
	}
	c.notify(m)
	return outcome, nil
}

// ExitComplete removes a card whose exit animation finished
func (c *Controller) ExitComplete(id string) error {
	m, err := c.current()
	if err != nil {
		return err
	}
	if m.projector.ExitComplete(id) {
		c.notify(m)
	}
	return nil
}

// Author resolves a card's author in the background and hands the result to
// deliver, unless the controller was deactivated in the meantime. Lookups are
// independent of each other. deliver must not block.
func (c *Controller) Author(authorID string, deliver func(*users.Author)) error {
	c.mu.Lock()
	m := c.cur
	if m == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	if c.deps.Authors == nil {
		c.mu.Unlock()
		return errors.New("author lookup not configured")
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()

		author, err := c.deps.Authors.GetAuthor(m.ctx, authorID)
		if err != nil {
			if m.ctx.Err() == nil {
				c.logger.Warn("failed to resolve author", "author", authorID, "error", err)
			}
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cur != m {
			return
		}
		deliver(author)
	}()
	return nil
}

// View derives the current stack and banner
func (c *Controller) View() View {
	c.mu.Lock()
	m := c.cur
	loading := m != nil && m.loading
	c.mu.Unlock()

	if m == nil {
		return View{Cards: []Card{}}
	}
	return View{
		Cards:   m.projector.Cards(),
		Banner:  m.banner.State(),
		Loading: loading,
	}
}

// Wait blocks until background loads, lookups and rating writes finish
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) current() (*mount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return nil, ErrNotActive
	}
	return c.cur, nil
}

func (c *Controller) load(m *mount) {
	defer c.wg.Done()

	list, err := c.deps.Loader.Load(m.ctx, m.viewerID)

	c.mu.Lock()
	if c.cur != m {
		c.mu.Unlock()
		c.logger.Debug("discarding feed load for inactive session", "generation", m.gen)
		return
	}
	m.loading = false
	if err == nil {
		m.store.Replace(list)
		m.projector.Prune()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("failed to load feed", "viewer", m.viewerID, "error", err)
	}
	c.notify(m)
}

// decide persists a committed swipe without waiting for it
func (c *Controller) decide(m *mount, postID string, dir ratings.Direction) {
	if c.deps.Ratings == nil {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(m.ctx), c.opts.WriteTimeout)
		defer cancel()

		if err := c.deps.Ratings.Record(ctx, m.viewerID, postID, dir); err != nil {
			c.logger.Warn("rating rejected", "viewer", m.viewerID, "post", postID, "direction", dir, "error", err)
		}
	}()
}

func (c *Controller) notify(m *mount) {
	if c.opts.OnChange == nil {
		return
	}
	c.mu.Lock()
	current := c.cur == m
	c.mu.Unlock()
	if current {
		c.opts.OnChange()
	}
}
