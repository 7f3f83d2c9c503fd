package feed

import (
	"sync"
	"time"
)

const (
	// DefaultBannerDuration is how long the new-post banner stays visible
	DefaultBannerDuration = 5 * time.Second

	// DefaultBannerText is shown when a post arrives from the change feed
	DefaultBannerText = "New posts are available!"
)

// BannerState is the visible part of the banner
type BannerState struct {
	Text    string `json:"text,omitempty"`
	Visible bool   `json:"visible"`
}

// Banner is a single transient notification. Showing it while it is already
// visible replaces the text and restarts the timer; banners never stack.
type Banner struct {
	duration time.Duration
	onChange func()

	mu      sync.Mutex
	text    string
	visible bool
	gen     uint64
	timer   *time.Timer
}

// NewBanner creates a banner that hides itself after duration.
// onChange is called outside the lock whenever visibility or text changes.
func NewBanner(duration time.Duration, onChange func()) *Banner {
	if duration <= 0 {
		duration = DefaultBannerDuration
	}
	return &Banner{duration: duration, onChange: onChange}
}

// Show makes text visible for the banner's duration
func (b *Banner) Show(text string) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.text = text
	b.visible = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.duration, func() { b.expire(gen) })
	b.mu.Unlock()

	b.notify()
}

// Hide clears the banner immediately and cancels any pending timer
func (b *Banner) Hide() {
	b.mu.Lock()
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	changed := b.visible
	b.visible = false
	b.text = ""
	b.mu.Unlock()

	if changed {
		b.notify()
	}
}

// State returns the current banner state
func (b *Banner) State() BannerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BannerState{Text: b.text, Visible: b.visible}
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	// a later Show or Hide owns the banner now
	if gen != b.gen || !b.visible {
		b.mu.Unlock()
		return
	}
	b.visible = false
	b.text = ""
	b.timer = nil
	b.mu.Unlock()

	b.notify()
}

func (b *Banner) notify() {
	if b.onChange != nil {
		b.onChange()
	}
}
