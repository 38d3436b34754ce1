package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Alphavantage struct {
	APIKey                string `json:"api_key"`
	Endpoint              string `json:"endpoint"`
	RetryAttempts         int    `json:"retry_attempts"`
	RetryCooldownSec      int    `json:"retry_cooldown_sec"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec"`
	CacheMaxItems         int    `json:"cache_max_items"`
}

type Config struct {
	Server       Server       `json:"server"`
	Alphavantage Alphavantage `json:"alphavantage"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Alphavantage: Alphavantage{
			Endpoint:         "https://www.alphavantage.co/query",
			RetryAttempts:    2,
			RetryCooldownSec: 60,
			// The free tier allows 5 requests per minute.
			MaxRequestsPerMinute: 5,
			Burst:                1,
			CacheTTLSeconds:      60,
			CacheMaxItems:        10000,
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && v > 0 {
		cfg.Server.RequestTimeoutSec = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Alphavantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" {
		cfg.Alphavantage.Endpoint = v
	}
	if v, ok := envInt("ALPHAVANTAGE_RETRY_ATTEMPTS"); ok && v > 0 {
		cfg.Alphavantage.RetryAttempts = v
	}
	if v, ok := envInt("ALPHAVANTAGE_RETRY_COOLDOWN_SEC"); ok && v >= 0 {
		cfg.Alphavantage.RetryCooldownSec = v
	}
	if v, ok := envInt("ALPHAVANTAGE_MAX_RPM"); ok && v >= 0 {
		cfg.Alphavantage.MaxRequestsPerMinute = v
	}
	if v, ok := envInt("ALPHAVANTAGE_MIN_INTERVAL_SEC"); ok && v >= 0 {
		cfg.Alphavantage.MinRequestIntervalSec = v
	}
	if v, ok := envInt("ALPHAVANTAGE_BURST"); ok && v > 0 {
		cfg.Alphavantage.Burst = v
	}
	if v, ok := envInt("ALPHAVANTAGE_CACHE_TTL_SEC"); ok && v >= 0 {
		cfg.Alphavantage.CacheTTLSeconds = v
	}
	if v, ok := envInt("ALPHAVANTAGE_CACHE_MAX_ITEMS"); ok && v > 0 {
		cfg.Alphavantage.CacheMaxItems = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return 0, false
	}
	return x, true
}
