package alphavantage

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pricefetch/internal/source"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// normalizeGlobalQuote extracts a price from a GLOBAL_QUOTE payload. The API
// reports only a trading day, no time of day, so the timestamp is anchored to
// UTC midnight.
func normalizeGlobalQuote(data map[string]any, base string) (*source.Price, error) {
	quote, err := objectField(data, "Global Quote")
	if err != nil {
		return nil, err
	}
	price, err := decimalField(quote, "05. price")
	if err != nil {
		return nil, err
	}
	day, err := stringField(quote, "07. latest trading day")
	if err != nil {
		return nil, err
	}
	t, err := time.ParseInLocation(dateLayout, day, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: latest trading day %q: %v", ErrMalformedResponse, day, err)
	}
	return &source.Price{Price: price, Time: t, QuoteCurrency: base}, nil
}

// normalizeExchangeRate extracts a rate from a CURRENCY_EXCHANGE_RATE
// payload. The refresh timestamp is interpreted in the zone the API names; an
// unresolvable zone is an error, not a silent UTC substitution.
func normalizeExchangeRate(data map[string]any, base string) (*source.Price, error) {
	rate, err := objectField(data, "Realtime Currency Exchange Rate")
	if err != nil {
		return nil, err
	}
	price, err := decimalField(rate, "5. Exchange Rate")
	if err != nil {
		return nil, err
	}
	refreshed, err := stringField(rate, "6. Last Refreshed")
	if err != nil {
		return nil, err
	}
	zone, err := stringField(rate, "7. Time Zone")
	if err != nil {
		return nil, err
	}
	loc := time.UTC
	if zone != "UTC" {
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown time zone %q", ErrMalformedResponse, zone)
		}
	}
	t, err := time.ParseInLocation(timestampLayout, refreshed, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: last refreshed %q: %v", ErrMalformedResponse, refreshed, err)
	}
	return &source.Price{Price: price, Time: t, QuoteCurrency: base}, nil
}

// normalizeDailySeries extracts the close for the requested instant from a
// TIME_SERIES_DAILY payload, walking back one calendar day at a time when the
// exact date is absent (weekends, holidays). The walk is bounded by the
// earliest day present in the series. Premium-tier gating and a missing
// series key degrade to an absent result so the caller can skip the date
// rather than fail the whole fetch.
func (s *Source) normalizeDailySeries(data map[string]any, at time.Time, base string) (*source.Price, error) {
	if info, ok := data["Information"].(string); ok && strings.Contains(strings.ToLower(info), "premium endpoint") {
		s.log.Info("premium endpoint API key required", slog.String("information", info))
		return nil, nil
	}
	raw, ok := data["Time Series (Daily)"]
	if !ok {
		s.log.Error("price data not found when expected", slog.Any("response", data))
		return nil, nil
	}
	series, ok := raw.(map[string]any)
	if !ok || len(series) == 0 {
		s.log.Error("price data not found when expected", slog.Any("response", data))
		return nil, nil
	}

	earliest := ""
	for key := range series {
		if earliest == "" || key < earliest {
			earliest = key
		}
	}

	for day := at; ; day = day.AddDate(0, 0, -1) {
		key := day.Format(dateLayout)
		if key < earliest {
			s.log.Info("no data on or before requested date",
				slog.String("requested", at.Format(dateLayout)), slog.String("earliest", earliest))
			return nil, nil
		}
		entryRaw, ok := series[key]
		if !ok {
			continue
		}
		entry, ok := entryRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: day entry %q is not an object", ErrMalformedResponse, key)
		}
		price, err := decimalField(entry, "4. close")
		if err != nil {
			return nil, err
		}
		// The originally requested instant, not the matched day, is reported
		// back as the price time.
		return &source.Price{Price: price, Time: at, QuoteCurrency: base}, nil
	}
}

func objectField(data map[string]any, key string) (map[string]any, error) {
	raw, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedResponse, key)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object", ErrMalformedResponse, key)
	}
	return obj, nil
}

func stringField(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedResponse, key)
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrMalformedResponse, key)
	}
	return v, nil
}

func decimalField(data map[string]any, key string) (decimal.Decimal, error) {
	v, err := stringField(data, key)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a decimal: %v", ErrMalformedResponse, key, err)
	}
	return d, nil
}
