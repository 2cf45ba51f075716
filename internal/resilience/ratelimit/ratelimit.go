// Package ratelimit bounds how many operations run within a rolling time
// window. It keeps a sliding-window log of admission timestamps: accurate
// at the boundary, no burst spikes, and cheap at the call volumes a digest
// pipeline sees.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Limiter admits at most maxCalls operations per sliding window.
// All state is guarded by one mutex per instance, so concurrent callers
// observe a serialized view with no lost or double admissions.
type Limiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	clock    Clock

	// admissions holds the timestamps admitted within the trailing window,
	// oldest first. Entries older than the window are evicted lazily on
	// each admission check.
	admissions []time.Time
}

// New creates a limiter admitting maxCalls operations per window.
func New(maxCalls int, window time.Duration) *Limiter {
	return NewWithClock(maxCalls, window, &SystemClock{})
}

// NewWithClock creates a limiter with an injected clock for tests.
func NewWithClock(maxCalls int, window time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = &SystemClock{}
	}
	return &Limiter{
		maxCalls:   maxCalls,
		window:     window,
		clock:      clock,
		admissions: make([]time.Time, 0, maxCalls),
	}
}

// Acquire asks for permission to proceed. If fewer than maxCalls admissions
// fall within the trailing window, the current time is recorded and 0 is
// returned: the caller may proceed immediately. Otherwise Acquire returns
// how long until the oldest admission ages out of the window (never
// negative). Acquire never sleeps; the boundary is inclusive, so a window
// holding exactly maxCalls admissions blocks the next caller.
func (l *Limiter) Acquire() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.evict(now)

	if len(l.admissions) >= l.maxCalls {
		wait := l.window - now.Sub(l.admissions[0])
		if wait > 0 {
			return wait
		}
	}

	l.admissions = append(l.admissions, now)
	return 0
}

// Do is the sleeping variant of Acquire: it waits out the reported duration
// (honoring ctx), records its own admission, then invokes fn. The only error
// Do introduces is ctx's; everything else is fn's own.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	wait := l.Acquire()
	if wait > 0 {
		slog.Debug("rate limit reached, waiting",
			slog.Duration("wait", wait),
			slog.Int("max_calls", l.maxCalls),
			slog.Duration("window", l.window))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("rate limit wait aborted: %w", ctx.Err())
		}

		l.mu.Lock()
		l.admissions = append(l.admissions, l.clock.Now())
		l.mu.Unlock()
	}

	return fn()
}

// InWindow reports how many admissions currently fall within the window.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(l.clock.Now())
	return len(l.admissions)
}

// evict drops admissions that have aged out. Caller must hold l.mu.
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admissions) && l.admissions[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.admissions = append(l.admissions[:0], l.admissions[i:]...)
	}
}
