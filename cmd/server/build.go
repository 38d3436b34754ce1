package main

import (
	"time"

	"pricefetch/internal/config"
	"pricefetch/internal/httpx"
	"pricefetch/internal/source"
	"pricefetch/internal/source/alphavantage"
	"pricefetch/internal/source/cache"
	"pricefetch/internal/source/ratelimit"
)

// buildSource assembles the Alpha Vantage source with the rate-limit and
// cache decorators the config asks for.
func buildSource(cfg config.Config) source.Source {
	av := cfg.Alphavantage
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	opts := []alphavantage.Option{alphavantage.WithHTTPClient(httpClient)}
	if av.Endpoint != "" {
		opts = append(opts, alphavantage.WithBaseURL(av.Endpoint))
	}
	if av.APIKey != "" {
		opts = append(opts, alphavantage.WithAPIKey(av.APIKey))
	}
	if av.RetryAttempts > 0 {
		opts = append(opts, alphavantage.WithRetryPolicy(alphavantage.RetryPolicy{
			Attempts: av.RetryAttempts,
			Cooldown: time.Duration(av.RetryCooldownSec) * time.Second,
		}))
	}

	var s source.Source = alphavantage.New(opts...)
	// Prefer token bucket with burst if RPM is set, otherwise use min-interval
	if av.MaxRequestsPerMinute > 0 {
		rate := float64(av.MaxRequestsPerMinute) / 60.0
		burst := av.Burst
		if burst <= 0 {
			burst = 1
		}
		s = &ratelimit.TokenBucketSource{S: s, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if av.MinRequestIntervalSec > 0 {
		s = &ratelimit.MinInterval{S: s, Interval: time.Duration(av.MinRequestIntervalSec) * time.Second}
	}
	if av.CacheTTLSeconds > 0 {
		s = &cache.Source{S: s, TTL: time.Duration(av.CacheTTLSeconds) * time.Second, MaxItems: av.CacheMaxItems}
	}
	return s
}

// fetchBudget is the overall deadline for one fetch: every attempt plus the
// cooldowns between them.
func fetchBudget(cfg config.Config) time.Duration {
	av := cfg.Alphavantage
	attempts := av.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	request := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	cooldown := time.Duration(av.RetryCooldownSec) * time.Second
	return request*time.Duration(attempts) + cooldown*time.Duration(attempts-1)
}
