package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Health represents the health status of a loader.
type Health struct {
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	LastSuccessAt *time.Time
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the circuit is closed.
func (h Health) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the circuit is half-open.
func (h Health) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the circuit is open.
func (h Health) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Status returns "healthy", "degraded" or "unhealthy".
func (h Health) Status() string {
	switch {
	case h.IsUnhealthy():
		return "unhealthy"
	case h.IsDegraded():
		return "degraded"
	default:
		return "healthy"
	}
}
