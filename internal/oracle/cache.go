package oracle

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

// Cached memoizes counts by predicate content. Counts are invariant within
// a run, so a hit returns exactly what the store would. Errors are never
// cached.
type Cached struct {
	next     Oracle
	cache    *lru.Cache
	observer Observer
}

// NewCached wraps next with an LRU cache holding up to size entries.
func NewCached(next Oracle, size int, observer Observer) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create count cache: %w", err)
	}
	return &Cached{next: next, cache: c, observer: observer}, nil
}

// Count serves from cache when possible.
func (c *Cached) Count(ctx context.Context, p itemset.Predicate) (int64, error) {
	key := p.Key()
	if v, ok := c.cache.Get(key); ok {
		c.lookup(true)
		return v.(int64), nil
	}
	c.lookup(false)

	n, err := c.next.Count(ctx, p)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, n)
	return n, nil
}

// Len returns the number of cached counts.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Purge drops every cached count.
func (c *Cached) Purge() {
	c.cache.Purge()
}

func (c *Cached) lookup(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(hit)
	}
}
