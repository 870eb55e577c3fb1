/*
main.go - Compliance service entry point

PURPOSE:
  Initializes and starts the wage compliance HTTP service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment (optionally a .env file)
  2. Initialize structured logging and metrics
  3. Open the SQLite store (minimums cache + run history)
  4. Build the statutory rates source; bootstrap from cache, schedule
     feed refreshes when RATES_FEED_URL is set
  5. Create the API handler and router
  6. Start the server with graceful shutdown

CONFIGURATION:
  Everything comes from environment variables; see config/config.go for
  the full list and defaults.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the rates refresh schedule
  4. Close the database connection
  5. Exit

EXAMPLES:
  # Run with file database
  COMPLIANCE_DB=./data/compliance.db ./server

  # Run with in-memory database on a different port
  COMPLIANCE_DB=":memory:" COMPLIANCE_ADDR=":3000" ./server

  # Enable the statutory rates feed and token auth
  RATES_FEED_URL=https://rates.example.gov/minimums.xml \
  AUTH_SECRET=$(openssl rand -hex 32) AUTH_CLIENT_SECRET=s3cr3t ./server

SEE ALSO:
  - config/config.go: environment variables
  - api/server.go: router configuration
  - rates/source.go: minimums refresh lifecycle
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/compliance-engine/api"
	"github.com/warp/compliance-engine/config"
	"github.com/warp/compliance-engine/logging"
	"github.com/warp/compliance-engine/metrics"
	"github.com/warp/compliance-engine/rates"
	"github.com/warp/compliance-engine/store/sqlite"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Stderr, cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to initialize database")
	}
	defer store.Close()

	m := metrics.New()

	var client *rates.Client
	if cfg.RatesFeedURL != "" {
		client = rates.NewClient(cfg.RatesFeedURL, log)
	}
	source := rates.NewSource(client, store, cfg.RatesCacheTTL, log)
	source.OnRefresh = m.IncrementRatesRefresh

	// A broken cache is not fatal: the built-in table stays active and the
	// next successful refresh overwrites the cache.
	if err := source.Bootstrap(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to bootstrap minimums from cache")
	}

	if client != nil {
		if err := source.StartSchedule(cfg.RatesRefreshSpec); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule rates refresh")
		}
	}

	handler := api.NewHandler(store, source, m, log)
	handler.Workers = cfg.Workers
	handler.Auth = api.AuthConfig{
		Secret:       cfg.AuthSecret,
		ClientID:     cfg.AuthClientID,
		ClientSecret: cfg.AuthClientSecret,
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Bool("auth", cfg.AuthEnabled()).
			Bool("rates_feed", client != nil).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	source.StopSchedule()
	log.Info().Msg("server stopped")
}
