// Package config builds the linker's runtime configuration from environment
// variables so main stays lean.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	pkgstrings "govlink/pkg/platform/strings"
)

// Config is the full runtime configuration for one linker process.
type Config struct {
	// OpsAddr is the bind address of the ops HTTP listener.
	OpsAddr string

	// PostgresDSN connects the stores. Empty means in-memory stores, which
	// is only useful for local runs.
	PostgresDSN string

	Redis RedisConfig

	// KafkaSeeds are the broker addresses of the audit sink. Empty disables
	// the sink; the audit store remains the source of truth.
	KafkaSeeds []string
	KafkaTopic string

	// Funds are the fund scopes this invocation processes, one run each.
	Funds []string

	// AsOf is the effective cutoff for feeds; zero means now.
	AsOf time.Time

	// Mode is the mode label reported in run summaries.
	Mode string

	// LogFormat is "json" or "text".
	LogFormat string
}

// RedisConfig tunes the corpus cache connection. An empty URL disables the
// cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// FromEnv reads the configuration. Only GOVLINK_FUNDS is required.
func FromEnv() (Config, error) {
	cfg := Config{
		OpsAddr:     envOr("GOVLINK_OPS_ADDR", ":9090"),
		PostgresDSN: os.Getenv("GOVLINK_POSTGRES_DSN"),
		KafkaTopic:  envOr("GOVLINK_KAFKA_TOPIC", "govlink.run-events"),
		Mode:        envOr("GOVLINK_MODE", "batch"),
		LogFormat:   envOr("GOVLINK_LOG_FORMAT", "json"),
		Redis: RedisConfig{
			URL:          os.Getenv("GOVLINK_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     24 * time.Hour,
		},
	}

	if seeds := os.Getenv("GOVLINK_KAFKA_SEEDS"); seeds != "" {
		cfg.KafkaSeeds = splitTrim(seeds)
	}

	funds := os.Getenv("GOVLINK_FUNDS")
	if funds == "" {
		return cfg, fmt.Errorf("GOVLINK_FUNDS is required (comma-separated fund UUIDs)")
	}
	cfg.Funds = pkgstrings.DedupeAndTrimLower(strings.Split(funds, ","))

	if raw := os.Getenv("GOVLINK_AS_OF"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return cfg, fmt.Errorf("parse GOVLINK_AS_OF: %w", err)
		}
		cfg.AsOf = asOf
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitTrim parses a comma-separated list, dropping blanks and duplicates.
func splitTrim(raw string) []string {
	return pkgstrings.DedupeAndTrim(strings.Split(raw, ","))
}
