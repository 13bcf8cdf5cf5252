package options

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc performs the fetch guarded by a Cache key.
type FetchFunc func(ctx context.Context) (Collection, error)

// Cache keeps settled option fetches keyed by allowed-values href. It is
// scoped to its owner (an orchestrator or session) and never expires entries:
// a failed fetch stays failed for the lifetime of the cache.
//
// Concurrent callers of the same key share one fetch. Each caller waits under
// its own context; the shared fetch itself is detached so that one caller
// giving up does not fail the others.
type Cache struct {
	group singleflight.Group

	mu      sync.RWMutex
	settled map[string]settled
}

type settled struct {
	collection Collection
	err        error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{settled: make(map[string]settled)}
}

// Get returns the settled result for key, running fetch at most once.
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) (Collection, error) {
	if c == nil {
		return fetch(ctx)
	}
	if res, ok := c.lookup(key); ok {
		return res.collection.clone(), res.err
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if res, ok := c.lookup(key); ok {
			return res, nil
		}
		collection, err := fetch(detached)
		res := settled{collection: collection, err: err}
		c.store(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Collection{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return Collection{}, out.Err
		}
		res := out.Val.(settled)
		return res.collection.clone(), res.err
	}
}

// Has reports whether key has settled, successfully or not.
func (c *Cache) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.lookup(key)
	return ok
}

// Len reports the number of settled keys.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.settled)
}

func (c *Cache) lookup(key string) (settled, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.settled[key]
	return res, ok
}

func (c *Cache) store(key string, res settled) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settled == nil {
		c.settled = make(map[string]settled)
	}
	c.settled[key] = res
}
