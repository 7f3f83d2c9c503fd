package feed

import (
	"math"
	"sync"

	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
)

// CardState is where a card is in its swipe lifecycle:
//
//	idle -> dragging -> committed -> animating_out -> removed
//	           \-> idle (released below threshold, or a vertical drag)
type CardState string

const (
	CardIdle         CardState = "idle"
	CardDragging     CardState = "dragging"
	CardCommitted    CardState = "committed"
	CardAnimatingOut CardState = "animating_out"
	CardRemoved      CardState = "removed"
)

// StackOffset is the vertical offset between stacked cards
const StackOffset = 8

// Card is one rendered element of the visual stack
type Card struct {
	Post        *posts.Post       `json:"post"`
	State       CardState         `json:"state"`
	ExitTo      ratings.Direction `json:"exitTo,omitempty"`
	Rank        int               `json:"rank"`
	ZIndex      int               `json:"zIndex"`
	OffsetTop   int               `json:"offsetTop"`
	Interactive bool              `json:"interactive"`
}

// Gesture is a finished drag as reported by the client
type Gesture struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Threshold decides when a drag counts as a decision.
// Either the distance or the velocity along the dominant axis must reach it.
type Threshold struct {
	Distance float64
	Velocity float64
}

// DefaultThreshold matches the card sizes the mobile client renders
var DefaultThreshold = Threshold{Distance: 120, Velocity: 0.6}

// Resolve returns the direction of g along its dominant axis and whether it
// crossed the threshold
func (t Threshold) Resolve(g Gesture) (ratings.Direction, bool) {
	if math.Abs(g.DX) >= math.Abs(g.DY) {
		dir := ratings.DirectionRight
		if g.DX < 0 || (g.DX == 0 && g.VX < 0) {
			dir = ratings.DirectionLeft
		}
		return dir, math.Abs(g.DX) >= t.Distance || math.Abs(g.VX) >= t.Velocity
	}

	dir := ratings.DirectionDown
	if g.DY < 0 {
		dir = ratings.DirectionUp
	}
	return dir, math.Abs(g.DY) >= t.Distance || math.Abs(g.VY) >= t.Velocity
}

// ReleaseOutcome is what a released drag turned into
type ReleaseOutcome string

const (
	ReleaseCancelled  ReleaseOutcome = "cancelled"
	ReleaseSuppressed ReleaseOutcome = "suppressed"
	ReleaseCommitted  ReleaseOutcome = "committed"
)

// DecisionFunc is called once per card, the moment a drag commits
type DecisionFunc func(postID string, dir ratings.Direction)

// Projector renders the store as a stack of cards and runs each card's
// gesture state machine. Only the first card of the store is interactive.
//
// A commit fires the decision callback right away; the card stays in the
// store until ExitComplete, which is the only path to Store.RemoveByID.
type Projector struct {
	store      *Store
	threshold  Threshold
	onDecision DecisionFunc

	mu     sync.Mutex
	states map[string]CardState
	exits  map[string]ratings.Direction
}

// NewProjector creates a projector over store
func NewProjector(store *Store, threshold Threshold, onDecision DecisionFunc) *Projector {
	return &Projector{
		store:      store,
		threshold:  threshold,
		onDecision: onDecision,
		states:     make(map[string]CardState),
		exits:      make(map[string]ratings.Direction),
	}
}

// Cards derives the visual stack, topmost first
func (p *Projector) Cards() []Card {
	items := p.store.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()

	cards := make([]Card, len(items))
	for i, post := range items {
		state := p.stateLocked(post.ID)
		cards[i] = Card{
			Post:        post,
			State:       state,
			ExitTo:      p.exits[post.ID],
			Rank:        i,
			ZIndex:      len(items) - i,
			OffsetTop:   i * StackOffset,
			Interactive: i == 0 && (state == CardIdle || state == CardDragging),
		}
	}
	return cards
}

// State returns the lifecycle state of id
func (p *Projector) State(id string) CardState {
	if !p.store.Contains(id) {
		return CardRemoved
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked(id)
}

// BeginDrag moves the top card to dragging
func (p *Projector) BeginDrag(id string) error {
	if err := p.checkInteractive(id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.stateLocked(id) {
	case CardIdle, CardDragging:
		p.states[id] = CardDragging
		return nil
	default:
		return ErrNotInteractive
	}
}

// Release ends a drag on the top card. Below the threshold the card returns
// to idle. A vertical drag is suppressed entirely: no decision, no removal.
// A horizontal commit fires the decision and starts the exit animation.
func (p *Projector) Release(id string, g Gesture) (ReleaseOutcome, ratings.Direction, error) {
	if err := p.checkInteractive(id); err != nil {
		return "", "", err
	}

	dir, crossed := p.threshold.Resolve(g)

	p.mu.Lock()
	state := p.stateLocked(id)
	if state != CardIdle && state != CardDragging {
		p.mu.Unlock()
		return "", "", ErrNotInteractive
	}

	if !crossed || !dir.Horizontal() {
		p.states[id] = CardIdle
		p.mu.Unlock()
		if !crossed {
			return ReleaseCancelled, "", nil
		}
		return ReleaseSuppressed, "", nil
	}

	p.commitLocked(id, dir)
	p.mu.Unlock()

	p.fire(id, dir)
	return ReleaseCommitted, dir, nil
}

// Commit applies a direction already resolved by the client's gesture
// library. Up and down are suppressed; only the top card can commit.
func (p *Projector) Commit(id string, dir ratings.Direction) (ReleaseOutcome, error) {
	if err := p.checkInteractive(id); err != nil {
		return "", err
	}

	p.mu.Lock()
	state := p.stateLocked(id)
	if state != CardIdle && state != CardDragging {
		p.mu.Unlock()
		return "", ErrNotInteractive
	}
	if !dir.Horizontal() {
		p.states[id] = CardIdle
		p.mu.Unlock()
		return ReleaseSuppressed, nil
	}

	p.commitLocked(id, dir)
	p.mu.Unlock()

	p.fire(id, dir)
	return ReleaseCommitted, nil
}

// ExitComplete is called once the card is fully offscreen. It removes the
// card from the store; the next card becomes interactive on its own.
// Returns false when the card was not animating out (nothing is removed).
func (p *Projector) ExitComplete(id string) bool {
	p.mu.Lock()
	state := p.stateLocked(id)
	if state != CardAnimatingOut && state != CardCommitted {
		p.mu.Unlock()
		return false
	}
	delete(p.states, id)
	delete(p.exits, id)
	p.mu.Unlock()

	p.store.RemoveByID(id)
	return true
}

// Prune forgets state for cards that are no longer in the store
func (p *Projector) Prune() {
	live := make(map[string]struct{})
	for _, id := range p.store.IDs() {
		live[id] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for id := range p.states {
		if _, ok := live[id]; !ok {
			delete(p.states, id)
			delete(p.exits, id)
		}
	}
}

func (p *Projector) checkInteractive(id string) error {
	top := p.store.Top()
	if top == nil || !p.store.Contains(id) {
		return ErrCardNotFound
	}
	if top.ID != id {
		return ErrNotInteractive
	}
	return nil
}

func (p *Projector) commitLocked(id string, dir ratings.Direction) {
	// committed and animating out happen together: the exit animation starts
	// as soon as the decision is made
	p.states[id] = CardAnimatingOut
	p.exits[id] = dir
}

func (p *Projector) fire(id string, dir ratings.Direction) {
	if p.onDecision != nil {
		p.onDecision(id, dir)
	}
}

func (p *Projector) stateLocked(id string) CardState {
	if s, ok := p.states[id]; ok {
		return s
	}
	return CardIdle
}
