package feed

import (
	"sync"

	"Swipeline/internal/core/posts"
)

// Store is the ordered list of posts the viewer has not decided on yet, in
// swipe order. It never holds two posts with the same id.
//
// The most recent maxRemovedIDs removed ids are remembered, so a reload that
// races a pending rating write cannot bring a swiped card back. Older ids are
// forgotten; their writes have settled and the loader excludes them.
type Store struct {
	mu           sync.RWMutex
	items        []*posts.Post
	removed      map[string]struct{}
	removedOrder []string
}

const maxRemovedIDs = 1024

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{removed: make(map[string]struct{})}
}

// Replace swaps in a freshly loaded sequence. Duplicate ids keep their first
// occurrence; recently removed ids are dropped.
func (s *Store) Replace(list []*posts.Post) {
	next := make([]*posts.Post, 0, len(list))
	seen := make(map[string]struct{}, len(list))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range list {
		if p == nil {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if _, gone := s.removed[p.ID]; gone {
			continue
		}
		seen[p.ID] = struct{}{}
		next = append(next, p)
	}
	s.items = next
}

// RemoveByID removes the post with id. It reports whether anything was
// removed; an absent id is not an error.
func (s *Store) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remember(id)
	for i, p := range s.items {
		if p.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// remember records id as removed, evicting the oldest id past the cap.
// Callers hold s.mu.
func (s *Store) remember(id string) {
	if _, ok := s.removed[id]; ok {
		return
	}
	s.removed[id] = struct{}{}
	s.removedOrder = append(s.removedOrder, id)
	if len(s.removedOrder) > maxRemovedIDs {
		delete(s.removed, s.removedOrder[0])
		s.removedOrder = s.removedOrder[1:]
	}
}

// Prepend puts post at the front unless its id is already present
func (s *Store) Prepend(post *posts.Post) bool {
	if post == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.items {
		if p.ID == post.ID {
			return false
		}
	}
	s.items = append([]*posts.Post{post}, s.items...)
	return true
}

// Snapshot returns a copy of the current sequence
func (s *Store) Snapshot() []*posts.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*posts.Post, len(s.items))
	copy(out, s.items)
	return out
}

// Top returns the first post, or nil when empty
func (s *Store) Top() *posts.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// Contains reports whether id is in the store
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.items {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of posts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// IDs returns the ids in order
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.items))
	for i, p := range s.items {
		ids[i] = p.ID
	}
	return ids
}
