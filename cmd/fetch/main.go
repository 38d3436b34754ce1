package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pricefetch/internal/config"
	"pricefetch/internal/source"
)

func main() {
	_ = godotenv.Load()

	var ticker, dateStr, configPath string
	var timeout int
	flag.StringVar(&ticker, "ticker", getenv("TICKER", ""), `ticker, e.g. "price:IBM:USD" or "fx:USD:CHF"`)
	flag.StringVar(&dateStr, "date", "", "historical date as YYYY-MM-DD (empty = latest)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (0 = config default)")
	flag.Parse()

	if ticker == "" {
		log.Fatal(`missing -ticker (e.g. "price:IBM:USD")`)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	src := buildSource(cfg)

	// The deadline has to cover the rate-limit cooldown between attempts,
	// not just the individual requests.
	ctx, cancel := context.WithTimeout(context.Background(), fetchBudget(cfg))
	defer cancel()

	var price *source.Price
	if dateStr != "" {
		at, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", dateStr, err)
		}
		price, err = src.HistoricalPrice(ctx, ticker, at)
		if err != nil {
			log.Fatalf("fetch: %v", err)
		}
	} else {
		price, err = src.LatestPrice(ctx, ticker)
		if err != nil {
			log.Fatalf("fetch: %v", err)
		}
	}
	if price == nil {
		log.Fatalf("no price available for %s", ticker)
	}

	out := struct {
		Ticker string        `json:"ticker"`
		*source.Price
	}{Ticker: ticker, Price: price}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
