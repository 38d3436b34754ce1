package cache

import (
	"context"
	"sync"
	"time"

	"pricefetch/internal/source"
)

// entry stores one cached price record with expiry.
type entry struct {
	expiresAt time.Time
	price     *source.Price
}

// Source caches fetched prices for a TTL, keyed by ticker (and instant for
// historical lookups). Absent results are not cached so a later fetch can
// still find data. In-memory only; nothing persists across restarts.
type Source struct {
	S        source.Source
	TTL      time.Duration
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry
}

func (c *Source) LatestPrice(ctx context.Context, ticker string) (*source.Price, error) {
	return c.lookup(ctx, "latest:"+ticker, func() (*source.Price, error) {
		return c.S.LatestPrice(ctx, ticker)
	})
}

func (c *Source) HistoricalPrice(ctx context.Context, ticker string, at time.Time) (*source.Price, error) {
	return c.lookup(ctx, "hist:"+ticker+"@"+at.Format(time.RFC3339), func() (*source.Price, error) {
		return c.S.HistoricalPrice(ctx, ticker, at)
	})
}

func (c *Source) lookup(_ context.Context, key string, fetch func() (*source.Price, error)) (*source.Price, error) {
	if c.TTL <= 0 {
		return fetch()
	}

	now := time.Now()
	c.mu.RLock()
	if e, ok := c.items[key]; ok && now.Before(e.expiresAt) {
		c.mu.RUnlock()
		return e.price, nil
	}
	c.mu.RUnlock()

	p, err := fetch()
	if err != nil || p == nil {
		return p, err
	}

	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[key] = entry{expiresAt: now.Add(c.TTL), price: p}
	c.evictLocked()
	c.mu.Unlock()
	return p, nil
}

// evictLocked caps cache size best-effort: expired entries first, then
// arbitrary keys until under the limit.
func (c *Source) evictLocked() {
	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	now := time.Now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
		if len(c.items) <= c.MaxItems {
			return
		}
	}
	for k := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		delete(c.items, k)
	}
}
