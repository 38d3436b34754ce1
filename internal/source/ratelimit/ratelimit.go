package ratelimit

import (
	"context"
	"sync"
	"time"

	"pricefetch/internal/source"
)

// MinInterval wraps a source and enforces a minimum time between API calls.
// Concurrent calls wait until the interval has elapsed since the last call,
// or return early if the context is canceled. Latest and historical fetches
// share the same gate since they count against the same provider quota.
type MinInterval struct {
	S        source.Source
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) LatestPrice(ctx context.Context, ticker string) (*source.Price, error) {
	if err := m.gate(ctx); err != nil {
		return nil, err
	}
	p, err := m.S.LatestPrice(ctx, ticker)
	m.mark()
	return p, err
}

func (m *MinInterval) HistoricalPrice(ctx context.Context, ticker string, at time.Time) (*source.Price, error) {
	if err := m.gate(ctx); err != nil {
		return nil, err
	}
	p, err := m.S.HistoricalPrice(ctx, ticker, at)
	m.mark()
	return p, err
}

func (m *MinInterval) gate(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MinInterval) mark() {
	if m.Interval <= 0 {
		return
	}
	m.mu.Lock()
	m.last = time.Now()
	m.mu.Unlock()
}
