package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricefetch/internal/config"
	"pricefetch/internal/source"
	"pricefetch/internal/source/alphavantage"
)

type priceResponse struct {
	Ticker string `json:"ticker"`
	*source.Price
}

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Alphavantage.APIKey == "" && os.Getenv("ALPHAVANTAGE_API_KEY") == "" {
		log.Println("warning: ALPHAVANTAGE_API_KEY not set; requests will fail")
	}

	src := buildSource(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/price", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleGetPrice(w, r, src)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(recoverPanic(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// One upstream fetch may sit through a rate-limit cooldown.
		WriteTimeout: fetchBudget(cfg) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func handleGetPrice(w http.ResponseWriter, r *http.Request, src source.Source) {
	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		http.Error(w, "missing ticker query param", http.StatusBadRequest)
		return
	}

	var (
		price *source.Price
		err   error
	)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		at, perr := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if perr != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		price, err = src.HistoricalPrice(r.Context(), ticker, at)
	} else {
		price, err = src.LatestPrice(r.Context(), ticker)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if price == nil {
		http.Error(w, "no price available", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(priceResponse{Ticker: ticker, Price: price})
}

// writeError maps the source error taxonomy onto HTTP statuses: caller
// mistakes are 4xx, our configuration is 500, upstream failures are 502.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, alphavantage.ErrInvalidTicker):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, alphavantage.ErrMissingAPIKey):
		http.Error(w, "source credential not configured", http.StatusInternalServerError)
	default:
		// transport, application and malformed-response failures
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
