// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the railops binaries. Database settings
// live in database.ConfigFromEnv.
type Config struct {
	Port        string
	Environment string

	// Location is the zone the host clock is read in when no explicit time
	// is requested.
	Location *time.Location

	OTELEnabled  bool
	OTLPEndpoint string

	// OTELSampleRatio is the share of root traces exported, in (0, 1].
	OTELSampleRatio float64

	// PubSubProject and PubSubSubscription identify the snapshot-change feed.
	// An empty subscription disables the subscriber.
	PubSubProject      string
	PubSubSubscription string

	// MetricsAddr is the Prometheus listen address. Empty disables it.
	MetricsAddr string

	RefreshInterval time.Duration

	// ServiceClasses are the duty calendars the worker recomputes.
	ServiceClasses []string

	// FixturePath, when set, serves a YAML roster instead of PostgreSQL.
	FixturePath string

	RateLimitPerMinute int

	// RequireTLS rejects requests a proxy reports as plain HTTP.
	RequireTLS bool
}

// Load reads .env files (missing files are ignored) and then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		OTELEnabled:        parseBool(os.Getenv("OTEL_ENABLED")),
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		PubSubProject:      os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
		MetricsAddr:        getEnvOrDefault("METRICS_ADDR", ":9102"),
		FixturePath:        os.Getenv("ROSTER_FIXTURE"),
		RequireTLS:         parseBool(os.Getenv("REQUIRE_TLS")),
	}

	tz := getEnvOrDefault("TZ", "Europe/Madrid")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", tz, err)
	}
	cfg.Location = loc

	refresh, err := time.ParseDuration(getEnvOrDefault("REFRESH_INTERVAL", "1m"))
	if err != nil || refresh <= 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %q", os.Getenv("REFRESH_INTERVAL"))
	}
	cfg.RefreshInterval = refresh

	rate, err := strconv.Atoi(getEnvOrDefault("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}
	cfg.RateLimitPerMinute = rate

	ratio, err := strconv.ParseFloat(getEnvOrDefault("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %q", os.Getenv("OTEL_SAMPLE_RATIO"))
	}
	cfg.OTELSampleRatio = ratio

	cfg.ServiceClasses = splitList(getEnvOrDefault("SERVICE_CLASSES", "weekday,friday,saturday,sunday"))

	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RosterSource names where duties are read from: "fixture" or "postgres".
func (c *Config) RosterSource() string {
	if c.FixturePath != "" {
		return "fixture"
	}
	return "postgres"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
