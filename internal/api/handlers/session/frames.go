package session

import (
	"Swipeline/internal/core/feed"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
)

// Client frame types
const (
	FrameDrag    = "drag"
	FrameRelease = "release"
	FrameCommit  = "commit"
	FrameExit    = "exit"
	FrameRefresh = "refresh"
	FrameAuthor  = "author"
)

// Server frame types
const (
	FrameView    = "view"
	FrameOutcome = "outcome"
	FrameError   = "error"
)

// ClientFrame is one intent sent by the swipe surface
type ClientFrame struct {
	Gesture   *feed.Gesture     `json:"gesture,omitempty"`
	Type      string            `json:"type"`
	ID        string            `json:"id,omitempty"`
	Direction ratings.Direction `json:"direction,omitempty"`
	AuthorID  string            `json:"authorId,omitempty"`
}

// ViewFrame carries the full stack; clients replace what they render
type ViewFrame struct {
	View feed.View `json:"view"`
	Type string    `json:"type"`
}

// OutcomeFrame reports what a release or commit turned into
type OutcomeFrame struct {
	Type    string              `json:"type"`
	ID      string              `json:"id"`
	Outcome feed.ReleaseOutcome `json:"outcome"`
}

// AuthorFrame answers an author lookup
type AuthorFrame struct {
	Author *users.Author `json:"author"`
	Type   string        `json:"type"`
}

// ErrorFrame rejects one intent. The session stays open.
type ErrorFrame struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
