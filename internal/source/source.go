package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Price is the normalized record returned by all sources.
// The timestamp always carries an explicit location; equality is structural.
type Price struct {
	Price         decimal.Decimal `json:"price"`
	Time          time.Time       `json:"time"`
	QuoteCurrency string          `json:"quote_currency"`
}

// Source is the pluggable price-source contract the host fetcher dispatches on.
//
// Both methods may return (nil, nil) when the source has no price for the
// request; callers treat that as "no data available" rather than a failure.
type Source interface {
	// LatestPrice returns the most recent price for the ticker.
	LatestPrice(ctx context.Context, ticker string) (*Price, error)
	// HistoricalPrice returns the price for the ticker as of the given instant.
	HistoricalPrice(ctx context.Context, ticker string, at time.Time) (*Price, error)
}
