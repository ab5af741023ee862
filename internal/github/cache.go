package github

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// ActivitySource is anything that can produce the activity feed.
type ActivitySource interface {
	RecentActivity(ctx context.Context, user string, limit int) ([]Activity, error)
}

type cacheEntry struct {
	items   []Activity
	expires time.Time
}

// CachedSource memoizes successful feed lookups for TTL. Errors are never cached.
// The zero value with Source and TTL set is ready to use.
type CachedSource struct {
	Source ActivitySource
	TTL    time.Duration
	Clock  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedSource wraps src. A non-positive ttl disables caching.
func NewCachedSource(src ActivitySource, ttl time.Duration) *CachedSource {
	return &CachedSource{Source: src, TTL: ttl}
}

func (c *CachedSource) RecentActivity(ctx context.Context, user string, limit int) ([]Activity, error) {
	if c.TTL <= 0 {
		return c.Source.RecentActivity(ctx, user, limit)
	}

	key := user + "|" + strconv.Itoa(limit)
	now := c.now()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && now.Before(entry.expires) {
		c.mu.Unlock()
		return entry.items, nil
	}
	c.mu.Unlock()

	items, err := c.Source.RecentActivity(ctx, user, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[key] = cacheEntry{items: items, expires: now.Add(c.TTL)}
	for k, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()

	return items, nil
}

func (c *CachedSource) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
