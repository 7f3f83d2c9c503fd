package users

import (
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedAuthor struct {
	expiresAt time.Time
	author    *Author
}

// AuthorCache is a bounded LRU of author display info.
// Every visible card resolves its author independently, so the same author is
// looked up many times in a row.
type AuthorCache struct {
	entries *lru.Cache[string, cachedAuthor]
	ttl     time.Duration
	now     func() time.Time
}

// NewAuthorCache creates a cache holding up to size authors for ttl each
func NewAuthorCache(size int, ttl time.Duration) *AuthorCache {
	entries, err := lru.New[string, cachedAuthor](size)
	if err != nil {
		slog.Warn("invalid author cache size, falling back to 1", "size", size, "error", err)
		entries, _ = lru.New[string, cachedAuthor](1)
	}
	return &AuthorCache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a live entry for id
func (c *AuthorCache) Get(id string) (*Author, bool) {
	entry, ok := c.entries.Get(id)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.entries.Remove(id)
		return nil, false
	}
	return entry.author, true
}

// Set stores author under its id
func (c *AuthorCache) Set(author *Author) {
	if author == nil || author.ID == "" {
		return
	}
	c.entries.Add(author.ID, cachedAuthor{
		author:    author,
		expiresAt: c.now().Add(c.ttl),
	})
}

// Invalidate drops id, used after a profile update
func (c *AuthorCache) Invalidate(id string) {
	c.entries.Remove(id)
}

// Len returns the number of cached entries, live or expired
func (c *AuthorCache) Len() int {
	return c.entries.Len()
}
