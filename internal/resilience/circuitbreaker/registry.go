package circuitbreaker

import (
	"sort"
	"sync"

	"github.com/sony/gobreaker"
)

// Registry tracks circuit breakers by name with get-or-create semantics.
// It is passed by reference to the components that need it rather than held
// as package state, so tests can run with isolated registries.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker registered under cfg.Name, creating it from cfg on
// first use. Configuration is first-writer-wins: later calls for the same
// name reuse the existing breaker and ignore the new arguments.
func (r *Registry) Get(cfg Config) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[cfg.Name]; ok {
		return cb
	}

	cb := New(cfg)
	r.breakers[cfg.Name] = cb
	return cb
}

// Status describes one breaker's current state for health reporting.
type Status struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
	FailureThreshold    uint32 `json:"failure_threshold"`
}

// Snapshot returns the status of every registered breaker.
func (r *Registry) Snapshot() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]Status, 0, len(r.breakers))
	for _, cb := range r.breakers {
		statuses = append(statuses, Status{
			Name:                cb.Name(),
			State:               stateLabel(cb.State()),
			ConsecutiveFailures: cb.ConsecutiveFailures(),
			FailureThreshold:    cb.config.FailureThreshold,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

func stateLabel(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
