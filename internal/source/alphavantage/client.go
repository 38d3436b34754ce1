package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"
	envAPIKey      = "ALPHAVANTAGE_API_KEY"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryPolicy controls the soft rate-limit retry. The free API tier answers
// over-limit requests with a "Note" payload instead of an error status; such
// a request is re-issued unchanged after Cooldown, up to Attempts total
// tries. A payload still carrying the marker after the last attempt is
// returned as-is rather than escalated.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// Cooldown is how long to wait between tries.
	Cooldown time.Duration
}

// DefaultRetryPolicy matches the provider's documented one-minute window.
var DefaultRetryPolicy = RetryPolicy{Attempts: 2, Cooldown: 60 * time.Second}

// Source is a price source backed by the Alpha Vantage HTTP API.
type Source struct {
	// baseURL is the query endpoint.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// retry is the soft rate-limit policy.
	retry RetryPolicy
	// apiKey returns the credential; read before every call so a key set
	// after process start is picked up.
	apiKey func() string
	// sleep waits between retry attempts; replaced by tests with a fake clock.
	sleep func(ctx context.Context, d time.Duration) error
	// log receives degraded-outcome events.
	log *slog.Logger
}

// Option is a configuration option for the source.
type Option func(*Source)

// WithBaseURL sets the query endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *Source) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(s *Source) {
		s.httpClient = httpClient
	}
}

// WithRetryPolicy sets the soft rate-limit retry policy.
func WithRetryPolicy(retry RetryPolicy) Option {
	return func(s *Source) {
		s.retry = retry
	}
}

// WithAPIKey sets a static credential instead of reading the environment.
func WithAPIKey(key string) Option {
	return func(s *Source) {
		s.apiKey = func() string { return key }
	}
}

// WithSleep replaces the wait between retry attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Source) {
		s.sleep = sleep
	}
}

// WithLogger sets the logger for degraded-outcome events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Source) {
		s.log = log
	}
}

// New creates an Alpha Vantage source.
func New(options ...Option) *Source {
	s := &Source{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		retry:      DefaultRetryPolicy,
		apiKey:     func() string { return os.Getenv(envAPIKey) },
		sleep:      waitFor,
		log:        slog.Default(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// fetch issues a GET with params plus the injected apikey and returns the
// decoded JSON body. Callers never pass the credential themselves.
func (s *Source) fetch(ctx context.Context, params url.Values) (map[string]any, error) {
	key := s.apiKey()
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("apikey", key)
	reqURL := s.baseURL + "?" + query.Encode()

	var (
		status    int
		body      []byte
		data      map[string]any
		decodeErr error
	)
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		res, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("performing request: %w", err)
		}
		body, err = io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		status = res.StatusCode

		data = nil
		decodeErr = json.Unmarshal(body, &data)

		// "Note" is the soft rate-limit marker. Retry before looking at the
		// status code: the marker can ride on a non-2xx response too.
		if _, limited := data["Note"]; !limited || attempt >= s.retry.Attempts {
			break
		}
		s.log.Info("rate limited, retrying after cooldown",
			slog.Duration("cooldown", s.retry.Cooldown), slog.Int("attempt", attempt))
		if err := s.sleep(ctx, s.retry.Cooldown); err != nil {
			return nil, err
		}
	}

	if status < 200 || status >= 300 {
		return nil, &StatusError{Code: status, Body: string(body)}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if msg, ok := data["Error Message"]; ok {
		return nil, &APIError{Message: fmt.Sprint(msg)}
	}
	return data, nil
}

// waitFor blocks for d or until the context is canceled.
func waitFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
