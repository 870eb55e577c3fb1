/*
Package config loads service configuration from the environment.

PURPOSE:
  Collects every knob the compliance service reads into one struct so
  main stays lean. Values come from environment variables, optionally
  seeded from a .env file in the working directory.

ENVIRONMENT VARIABLES:
  COMPLIANCE_ADDR       HTTP listen address        (default ":8080")
  COMPLIANCE_DB         SQLite database path       (default "compliance.db")
                        Use ":memory:" for an in-memory database.
  COMPLIANCE_WORKERS    Batch evaluation workers   (default 4)
  LOG_LEVEL             zerolog level name         (default "info")
  RATES_FEED_URL        Statutory rates XML feed   (default "", feed disabled)
  RATES_REFRESH_SPEC    Cron spec for feed refresh (default "0 3 * * *")
  RATES_CACHE_TTL       Max age of cached minimums (default 24h)
  AUTH_SECRET           JWT signing secret         (default "", auth disabled)
  AUTH_CLIENT_ID        Token grant client id      (default "auditor")
  AUTH_CLIENT_SECRET    Token grant client secret  (default "")

SEE ALSO:
  - cmd/server/main.go: consumes this at startup
  - api/auth.go: AuthSecret / client credential checks
*/
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	Addr    string
	DBPath  string
	Workers int

	LogLevel string

	RatesFeedURL     string
	RatesRefreshSpec string
	RatesCacheTTL    time.Duration

	AuthSecret       string
	AuthClientID     string
	AuthClientSecret string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; a missing file is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:             getEnvString("COMPLIANCE_ADDR", ":8080"),
		DBPath:           getEnvString("COMPLIANCE_DB", "compliance.db"),
		Workers:          getEnvInt("COMPLIANCE_WORKERS", 4),
		LogLevel:         getEnvString("LOG_LEVEL", "info"),
		RatesFeedURL:     getEnvString("RATES_FEED_URL", ""),
		RatesRefreshSpec: getEnvString("RATES_REFRESH_SPEC", "0 3 * * *"),
		RatesCacheTTL:    getEnvDuration("RATES_CACHE_TTL", 24*time.Hour),
		AuthSecret:       getEnvString("AUTH_SECRET", ""),
		AuthClientID:     getEnvString("AUTH_CLIENT_ID", "auditor"),
		AuthClientSecret: getEnvString("AUTH_CLIENT_SECRET", ""),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}

// AuthEnabled reports whether token auth is configured.
func (c Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
