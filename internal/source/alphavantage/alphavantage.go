// Package alphavantage fetches prices and exchange rates from
// https://www.alphavantage.co and normalizes them into source.Price records.
//
// It requires a free API key, read from the ALPHAVANTAGE_API_KEY environment
// variable at call time.
//
// Tickers for instrument prices are in the form "price:SYMBOL:BASE", such as
// "price:IBM:USD", where BASE is the quote currency the caller expects the
// data in. The API does not support converting to a specific currency and
// does not report which currency a quote is in, so BASE is forwarded to the
// caller as declared rather than verified.
//
// Tickers for exchange rates are in the form "fx:CCY:BASE", such as
// "fx:USD:CHF".
//
// API documentation: https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"pricefetch/internal/source"
)

// fullOutputAge is how far back a requested instant may be before the daily
// series must be fetched with outputSize=full. The compact response carries
// only the ~100 most recent points, which due to weekends spans just under
// five months of calendar time.
const fullOutputAge = 130 * 24 * time.Hour

// Compile-time check that Source satisfies the host's pluggable-source contract.
var _ source.Source = (*Source)(nil)

// LatestPrice returns the latest spot price for a "price:" ticker or the
// latest exchange rate for an "fx:" ticker.
func (s *Source) LatestPrice(ctx context.Context, ticker string) (*source.Price, error) {
	kind, symbol, base, err := parseTicker(ticker)
	if err != nil {
		return nil, err
	}

	if kind == kindPrice {
		data, err := s.fetch(ctx, url.Values{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
		})
		if err != nil {
			return nil, err
		}
		return normalizeGlobalQuote(data, base)
	}

	data, err := s.fetch(ctx, url.Values{
		"function":      {"CURRENCY_EXCHANGE_RATE"},
		"from_currency": {symbol},
		"to_currency":   {base},
	})
	if err != nil {
		return nil, err
	}
	return normalizeExchangeRate(data, base)
}

// HistoricalPrice returns the close price for a "price:" ticker as of the
// given instant, walking back to the nearest earlier trading day when the
// exact date is absent from the series. Historical exchange rates are not
// supported by this source and yield an absent result without a request.
func (s *Source) HistoricalPrice(ctx context.Context, ticker string, at time.Time) (*source.Price, error) {
	kind, symbol, base, err := parseTicker(ticker)
	if err != nil {
		return nil, err
	}
	if kind == kindFX {
		s.log.Info("historical currency exchange not implemented", slog.String("ticker", ticker))
		return nil, nil
	}

	// Compact is the default and returns 100 data points; use "full" when the
	// requested instant may fall outside that window.
	outputSize := "compact"
	if at.Before(time.Now().UTC().Add(-fullOutputAge)) {
		outputSize = "full"
	}

	data, err := s.fetch(ctx, url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputSize": {outputSize},
	})
	if err != nil {
		return nil, err
	}
	return s.normalizeDailySeries(data, at, base)
}
