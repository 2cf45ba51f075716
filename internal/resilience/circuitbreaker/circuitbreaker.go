// Package circuitbreaker protects upstream calls from cascading failure.
// It wraps github.com/sony/gobreaker configured for consecutive-failure
// tripping: a breaker opens after FailureThreshold consecutive failures,
// stays open for RecoveryTimeout, then admits a single half-open trial.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is the distinct signal returned when a call is blocked because
// the circuit is open. The wrapped operation is not invoked.
var ErrOpen = gobreaker.ErrOpenState

// Config holds the configuration for one named circuit breaker.
type Config struct {
	// Name identifies the protected operation in the registry and in logs.
	Name string

	// FailureThreshold is the number of consecutive failures that trips
	// the circuit from Closed to Open.
	FailureThreshold uint32

	// RecoveryTimeout is how long the circuit stays Open before the next
	// call attempt is admitted as a half-open trial.
	RecoveryTimeout time.Duration
}

// DefaultConfig returns a default configuration for the given name.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 3,
		RecoveryTimeout:  60 * time.Second,
	}
}

// SourceConfig returns configuration for upstream news source calls.
// Sources fail loudly and recover slowly, so the cooldown is generous.
func SourceConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 3,
		RecoveryTimeout:  5 * time.Minute,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with consecutive-failure
// semantics and slog state-change logging.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	config  Config
}

// New creates a new circuit breaker with the given configuration.
//
// MaxRequests is fixed at 1 so the half-open state admits exactly one trial
// call: success closes the circuit and resets the failure count, failure
// reopens it. Interval is 0 so consecutive-failure counts are never cleared
// by elapsed time while Closed, only by a successful call.
func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		config:  cfg,
	}
}

// Execute runs the given function through the circuit breaker.
// If the circuit is open, it returns ErrOpen immediately without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// ConsecutiveFailures returns the current consecutive failure count.
func (cb *CircuitBreaker) ConsecutiveFailures() uint32 {
	return cb.breaker.Counts().ConsecutiveFailures
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// IsOpenError reports whether err is the blocked-fast-fail signal, i.e. the
// wrapped operation was not invoked. This covers both the open state and a
// rejected extra call during the single half-open trial. Callers use it to
// distinguish a skipped source from a source that genuinely returned nothing.
func IsOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
