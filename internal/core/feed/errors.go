package feed

import "errors"

var (
	// ErrNotInteractive is returned for a gesture on a card that is not the top card
	ErrNotInteractive = errors.New("card is not interactive")

	// ErrCardNotFound is returned for a gesture on a card that is not in the feed
	ErrCardNotFound = errors.New("card not found")

	// ErrNotActive is returned for an intent sent to an inactive controller
	ErrNotActive = errors.New("feed controller is not active")
)
