// Package worker holds the scheduled-run plumbing: environment-driven
// configuration and the health endpoint server.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"daily-brief/internal/pkg/config"
)

// WorkerConfig controls the scheduled digest runs.
//
// Loading is fail-open: an invalid environment value falls back to the
// default with a warning, so a typo in one variable never keeps the
// morning digest from going out.
type WorkerConfig struct {
	// CronSchedule is the cron expression for the digest run.
	// Default: "0 7 * * *" (every day at 07:00).
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC".
	Timezone string

	// TopicsPath is the YAML topics file location.
	// Default: "topics.yaml".
	TopicsPath string

	// CacheDir is the article cache directory.
	// Default: ".cache".
	CacheDir string

	// CacheMaxAge is how long cached per-topic results stay fresh.
	// Default: 60 minutes.
	CacheMaxAge time.Duration

	// DigestTimeout bounds one full digest run.
	// Default: 15 minutes.
	DigestTimeout time.Duration

	// HealthPort serves liveness, readiness, and circuit status.
	// Range 1024-65535. Default: 9091.
	HealthPort int

	// MetricsPort serves Prometheus metrics.
	// Range 1024-65535. Default: 9092.
	MetricsPort int
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 7 * * *",
		Timezone:      "UTC",
		TopicsPath:    "topics.yaml",
		CacheDir:      ".cache",
		CacheMaxAge:   60 * time.Minute,
		DigestTimeout: 15 * time.Minute,
		HealthPort:    9091,
		MetricsPort:   9092,
	}
}

// Validate checks every field and returns the collected failures.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if c.TopicsPath == "" {
		errs = append(errs, fmt.Errorf("topics path must not be empty"))
	}
	if c.CacheDir == "" {
		errs = append(errs, fmt.Errorf("cache dir must not be empty"))
	}
	if err := config.ValidatePositiveDuration(c.CacheMaxAge); err != nil {
		errs = append(errs, fmt.Errorf("cache max age: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.DigestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("digest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	return errors.Join(errs...)
}

// LoadConfigFromEnv builds a WorkerConfig from environment variables,
// falling back per field to the default on missing or invalid values.
//
// Environment variables:
//   - DIGEST_CRON_SCHEDULE
//   - DIGEST_TIMEZONE
//   - DIGEST_TOPICS_PATH
//   - DIGEST_CACHE_DIR
//   - DIGEST_CACHE_MAX_AGE (Go duration, e.g. "60m")
//   - DIGEST_RUN_TIMEOUT   (Go duration, e.g. "15m")
//   - DIGEST_HEALTH_PORT
//   - DIGEST_METRICS_PORT
func LoadConfigFromEnv(logger *slog.Logger) WorkerConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("DIGEST_CRON_SCHEDULE"); v != "" {
		if err := config.ValidateCronSchedule(v); err != nil {
			logger.Warn("invalid DIGEST_CRON_SCHEDULE, using default",
				slog.String("value", v),
				slog.String("default", cfg.CronSchedule),
				slog.String("error", err.Error()))
		} else {
			cfg.CronSchedule = v
		}
	}

	if v := os.Getenv("DIGEST_TIMEZONE"); v != "" {
		if err := config.ValidateTimezone(v); err != nil {
			logger.Warn("invalid DIGEST_TIMEZONE, using default",
				slog.String("value", v),
				slog.String("default", cfg.Timezone),
				slog.String("error", err.Error()))
		} else {
			cfg.Timezone = v
		}
	}

	if v := os.Getenv("DIGEST_TOPICS_PATH"); v != "" {
		cfg.TopicsPath = v
	}
	if v := os.Getenv("DIGEST_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	cfg.CacheMaxAge = durationFromEnv(logger, "DIGEST_CACHE_MAX_AGE", cfg.CacheMaxAge)
	cfg.DigestTimeout = durationFromEnv(logger, "DIGEST_RUN_TIMEOUT", cfg.DigestTimeout)
	cfg.HealthPort = portFromEnv(logger, "DIGEST_HEALTH_PORT", cfg.HealthPort)
	cfg.MetricsPort = portFromEnv(logger, "DIGEST_METRICS_PORT", cfg.MetricsPort)

	return cfg
}

func durationFromEnv(logger *slog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || config.ValidatePositiveDuration(d) != nil {
		logger.Warn("invalid duration env, using default",
			slog.String("key", key),
			slog.String("value", v),
			slog.Duration("default", fallback))
		return fallback
	}
	return d
}

func portFromEnv(logger *slog.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	port, err := strconv.Atoi(v)
	if err != nil || config.ValidateIntRange(port, 1024, 65535) != nil {
		logger.Warn("invalid port env, using default",
			slog.String("key", key),
			slog.String("value", v),
			slog.Int("default", fallback))
		return fallback
	}
	return port
}
