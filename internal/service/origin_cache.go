package service

import (
	"context"
	"sync"
	"time"
)

// OriginCache is a read-through cache over the allowed-origin list. It is
// owned by the process and injected into the CORS middleware; nothing
// mutates a package-level origin slice.
type OriginCache struct {
	load func(ctx context.Context) ([]string, error)
	ttl  time.Duration

	mu        sync.RWMutex
	origins   map[string]struct{}
	wildcard  bool
	refreshed time.Time
}

func NewOriginCache(load func(ctx context.Context) ([]string, error), ttl time.Duration) *OriginCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OriginCache{load: load, ttl: ttl}
}

// Allowed reports whether origin may call the API, refreshing the list when
// it is stale. An empty list (or a load failure before the first successful
// refresh) allows everything, matching the wildcard default.
func (c *OriginCache) Allowed(ctx context.Context, origin string) (bool, error) {
	c.mu.RLock()
	fresh := time.Since(c.refreshed) < c.ttl && c.origins != nil
	c.mu.RUnlock()

	if !fresh {
		if err := c.Refresh(ctx); err != nil {
			c.mu.RLock()
			loaded := c.origins != nil
			c.mu.RUnlock()
			if !loaded {
				return true, nil
			}
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.wildcard || len(c.origins) == 0 {
		return true, nil
	}
	_, ok := c.origins[origin]
	return ok, nil
}

// Refresh reloads the allow-list immediately regardless of TTL.
func (c *OriginCache) Refresh(ctx context.Context) error {
	values, err := c.load(ctx)
	if err != nil {
		return err
	}

	origins := make(map[string]struct{}, len(values))
	wildcard := false
	for _, v := range values {
		if v == "*" {
			wildcard = true
		}
		origins[v] = struct{}{}
	}

	c.mu.Lock()
	c.origins = origins
	c.wildcard = wildcard
	c.refreshed = time.Now()
	c.mu.Unlock()
	return nil
}
