// Package retry provides retry logic with exponential backoff.
// It helps handle transient failures gracefully by automatically re-invoking
// failed operations a bounded number of times.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config holds the configuration for retry logic.
type Config struct {
	// Retries is the number of additional attempts after the first failure.
	// An operation is invoked at most Retries+1 times.
	Retries int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponentially growing delay between retries.
	MaxBackoff time.Duration

	// RetryIf decides whether an error is worth retrying.
	// Nil means every error is retried.
	RetryIf func(error) bool
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		Retries:        3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// FetchConfig returns configuration for upstream news fetching.
// Only transient transport errors are retried.
func FetchConfig() Config {
	return Config{
		Retries:        2,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     10 * time.Second,
		RetryIf:        IsRetryable,
	}
}

// DeliverConfig returns configuration for message delivery.
// Delivery is the last pipeline stage, so it retries harder.
func DeliverConfig() Config {
	return Config{
		Retries:        3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// SummarizeConfig returns configuration for LLM summarization calls.
// Moderate retry due to cost considerations.
func SummarizeConfig() Config {
	return Config{
		Retries:        2,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     10 * time.Second,
		RetryIf:        IsRetryable,
	}
}

// Do executes fn with retry and exponential backoff.
//
// The delay before retry k (1-indexed) is min(InitialBackoff*2^(k-1), MaxBackoff).
// When all attempts fail, the last error is returned to the caller unchanged,
// so call sites can inspect it with errors.Is/As against the underlying
// operation's own error values.
//
// Do does not make fn idempotent. Callers must only wrap operations that are
// safe to re-invoke.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if attempt > 0 {
			delay := backoff(cfg, attempt)
			slog.Warn("operation failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("retries", cfg.Retries),
				slog.Duration("wait", delay),
				slog.Any("error", lastErr))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			}
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt))
			}
			return nil
		}

		if cfg.RetryIf != nil && !cfg.RetryIf(lastErr) {
			slog.Warn("non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", lastErr))
			return lastErr
		}
	}

	return lastErr
}

// backoff computes the delay before the given 1-indexed retry attempt.
func backoff(cfg Config, attempt int) time.Duration {
	delay := cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= cfg.MaxBackoff {
			return cfg.MaxBackoff
		}
	}
	if delay > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return delay
}

// IsRetryable determines if an error looks transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network errors (timeout)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Syscall errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	// HTTP status codes
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		// 5xx server errors are retryable
		if httpErr.StatusCode >= 500 && httpErr.StatusCode < 600 {
			return true
		}
		// 429 Too Many Requests is retryable
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		// 408 Request Timeout is retryable
		if httpErr.StatusCode == http.StatusRequestTimeout {
			return true
		}
	}

	return false
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
