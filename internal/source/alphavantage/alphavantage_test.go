package alphavantage_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pricefetch/internal/source/alphavantage"
)

// dailySeriesPayload is a truncated TIME_SERIES_DAILY response; real ones
// carry 100+ entries.
var dailySeriesPayload = map[string]any{
	"Meta Data": map[string]any{
		"1. Information":  "Daily Prices (open, high, low, close) and Volumes",
		"2. Symbol":       "IBM",
		"3. Last Refreshed": "2025-04-08",
		"4. Output Size":  "Compact",
		"5. Time Zone":    "US/Eastern",
	},
	"Time Series (Daily)": map[string]any{
		"2025-04-08": map[string]any{
			"1. open": "232.56", "2. high": "233.05", "3. low": "217.28",
			"4. close": "221.03", "5. volume": "6374209",
		},
		"2025-04-07": map[string]any{
			"1. open": "219.24", "2. high": "232.29", "3. low": "214.5",
			"4. close": "225.78", "5. volume": "7797889",
		},
		"2025-04-04": map[string]any{
			"1. open": "238.0", "2. high": "240.16", "3. low": "226.88",
			"4. close": "227.48", "5. volume": "7407096",
		},
		"2025-04-03": map[string]any{
			"1. open": "242.71", "2. high": "250.61", "3. low": "242.53",
			"4. close": "243.49", "5. volume": "5309626",
		},
	},
}

func TestLatestPrice_GlobalQuote(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, globalQuotePayload), nil
		}).
		Times(1)

	src := newSource(httpClient)
	price, err := src.LatestPrice(context.Background(), "price:FOO:USD")
	require.NoError(t, err)
	require.NotNil(t, price)

	require.True(t, price.Price.Equal(decimal.RequireFromString("144.7400")),
		"want 144.7400, got %s", price.Price)
	require.Equal(t, "USD", price.QuoteCurrency)
	// The API reports only a trading day; the timestamp is UTC midnight.
	require.True(t, price.Time.Equal(time.Date(2021, 1, 21, 0, 0, 0, 0, time.UTC)),
		"unexpected time %s", price.Time)
}

func TestLatestPrice_ExchangeRate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "CURRENCY_EXCHANGE_RATE", req.URL.Query().Get("function"))
			require.Equal(t, "USD", req.URL.Query().Get("from_currency"))
			require.Equal(t, "CHF", req.URL.Query().Get("to_currency"))
			return jsonResponse(t, http.StatusOK, map[string]any{
				"Realtime Currency Exchange Rate": map[string]any{
					"5. Exchange Rate":  "108.94000000",
					"6. Last Refreshed": "2021-02-21 20:32:25",
					"7. Time Zone":      "UTC",
				},
			}), nil
		}).
		Times(1)

	src := newSource(httpClient)
	price, err := src.LatestPrice(context.Background(), "fx:USD:CHF")
	require.NoError(t, err)
	require.NotNil(t, price)

	require.True(t, price.Price.Equal(decimal.RequireFromString("108.94000000")),
		"want 108.94000000, got %s", price.Price)
	require.Equal(t, "CHF", price.QuoteCurrency)
	require.True(t, price.Time.Equal(time.Date(2021, 2, 21, 20, 32, 25, 0, time.UTC)),
		"unexpected time %s", price.Time)
}

func TestLatestPrice_ExchangeRateNamedZone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]any{
				"Realtime Currency Exchange Rate": map[string]any{
					"5. Exchange Rate":  "151.22",
					"6. Last Refreshed": "2021-02-21 20:32:25",
					"7. Time Zone":      "US/Eastern",
				},
			}), nil
		}).
		Times(1)

	src := newSource(httpClient)
	price, err := src.LatestPrice(context.Background(), "fx:USD:JPY")
	require.NoError(t, err)
	require.NotNil(t, price)

	eastern, err := time.LoadLocation("US/Eastern")
	require.NoError(t, err)
	require.True(t, price.Time.Equal(time.Date(2021, 2, 21, 20, 32, 25, 0, eastern)),
		"unexpected time %s", price.Time)
}

func TestLatestPrice_ExchangeRateUnknownZone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]any{
				"Realtime Currency Exchange Rate": map[string]any{
					"5. Exchange Rate":  "1.0",
					"6. Last Refreshed": "2021-02-21 20:32:25",
					"7. Time Zone":      "Not/AZone",
				},
			}), nil
		}).
		Times(1)

	// An unresolvable zone is an error, never a silent UTC substitution.
	src := newSource(httpClient)
	price, err := src.LatestPrice(context.Background(), "fx:USD:CHF")
	require.ErrorIs(t, err, alphavantage.ErrMalformedResponse)
	require.Nil(t, price)
}

func TestLatestPrice_MissingField(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]any{
				"Global Quote": map[string]any{
					"07. latest trading day": "2021-01-21",
				},
			}), nil
		}).
		Times(1)

	src := newSource(httpClient)
	price, err := src.LatestPrice(context.Background(), "price:FOO:USD")
	require.ErrorIs(t, err, alphavantage.ErrMalformedResponse)
	require.ErrorContains(t, err, "05. price")
	require.Nil(t, price)
}

func TestHistoricalPrice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "TIME_SERIES_DAILY", req.URL.Query().Get("function"))
			require.Equal(t, "IBM", req.URL.Query().Get("symbol"))
			require.Equal(t, "full", req.URL.Query().Get("outputSize"))
			return jsonResponse(t, http.StatusOK, dailySeriesPayload), nil
		}).
		Times(1)

	src := newSource(httpClient)
	at := time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)
	price, err := src.HistoricalPrice(context.Background(), "price:IBM:USD", at)
	require.NoError(t, err)
	require.NotNil(t, price)

	require.True(t, price.Price.Equal(decimal.RequireFromString("227.48")),
		"want 227.48, got %s", price.Price)
	require.Equal(t, "USD", price.QuoteCurrency)
	require.Equal(t, "2025-04-04", price.Time.Format("2006-01-02"))
}

func TestHistoricalPrice_OutputSizeCompactForRecentDates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	at := time.Now().UTC().AddDate(0, 0, -7)
	key := at.Format("2006-01-02")
	payload := map[string]any{
		"Time Series (Daily)": map[string]any{
			key: map[string]any{"4. close": "100.00"},
		},
	}

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "compact", req.URL.Query().Get("outputSize"))
			return jsonResponse(t, http.StatusOK, payload), nil
		}).
		Times(1)

	src := newSource(httpClient)
	price, err := src.HistoricalPrice(context.Background(), "price:IBM:USD", at)
	require.NoError(t, err)
	require.NotNil(t, price)
}

func TestHistoricalPrice_WeekendFallsBackToPreviousTradingDay(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, dailySeriesPayload), nil
		}).
		Times(1)

	src := newSource(httpClient)
	// 2025-04-06 was a Sunday; the nearest earlier trading day is 04-04.
	at := time.Date(2025, 4, 6, 12, 0, 0, 0, time.UTC)
	price, err := src.HistoricalPrice(context.Background(), "price:IBM:USD", at)
	require.NoError(t, err)
	require.NotNil(t, price)

	require.True(t, price.Price.Equal(decimal.RequireFromString("227.48")),
		"want the 04-04 close, got %s", price.Price)
	// The record keeps the originally requested instant, not the matched day.
	require.True(t, price.Time.Equal(at), "unexpected time %s", price.Time)
}

func TestHistoricalPrice_BeforeSeriesStartYieldsAbsent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, dailySeriesPayload), nil
		}).
		Times(1)

	src := newSource(httpClient)
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	price, err := src.HistoricalPrice(context.Background(), "price:IBM:USD", at)
	require.NoError(t, err)
	require.Nil(t, price)
}

func TestHistoricalPrice_PremiumEndpointYieldsAbsent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]any{
				"Information": "Thank you for using Alpha Vantage! This is a premium endpoint.",
			}), nil
		}).
		Times(1)

	src := newSource(httpClient)
	at := time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)
	price, err := src.HistoricalPrice(context.Background(), "price:IBM:USD", at)
	require.NoError(t, err)
	require.Nil(t, price)
}

func TestHistoricalPrice_MissingSeriesYieldsAbsent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]any{"Meta Data": map[string]any{}}), nil
		}).
		Times(1)

	src := newSource(httpClient)
	at := time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)
	price, err := src.HistoricalPrice(context.Background(), "price:IBM:USD", at)
	require.NoError(t, err)
	require.Nil(t, price)
}

func TestHistoricalPrice_FXShortCircuits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// No request may be issued for an unsupported historical fx lookup.
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	src := newSource(httpClient)
	at := time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)
	price, err := src.HistoricalPrice(context.Background(), "fx:USD:CHF", at)
	require.NoError(t, err)
	require.Nil(t, price)
}
