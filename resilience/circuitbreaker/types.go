package circuitbreaker

import (
	"errors"
	"time"
)

// ErrBreakerOpen indicates the call fast-failed because the breaker is
// open (or saturated in half-open); the downstream dependency was never
// invoked. Callers may consult the fallback cache on this error.
var ErrBreakerOpen = errors.New("circuitbreaker: open")

// ErrBreakerNotFound indicates Execute was called for a service that was
// never registered with GetOrCreate.
var ErrBreakerNotFound = errors.New("circuitbreaker: breaker not found")

// State represents the breaker state for one service.
type State string

const (
	// StateClosed passes calls through while tracking outcomes.
	StateClosed State = "closed"
	// StateOpen fast-fails calls without invoking the dependency.
	StateOpen State = "open"
	// StateHalfOpen admits a small fixed number of trial calls after the
	// cool-down; extra concurrent calls are rejected exactly as in open.
	StateHalfOpen State = "half-open"
	// StateUnknown is reported for services with no breaker.
	StateUnknown State = "unknown"
)

// Counts is a snapshot of the rolling outcome window for one service.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Snapshot is the externally visible breaker state for one service, used
// by health reporting.
type Snapshot struct {
	State    State     `json:"state"`
	Counts   Counts    `json:"counts"`
	OpenedAt time.Time `json:"openedAt,omitzero"`
}

// Manager manages one circuit breaker per downstream service.
type Manager interface {
	// GetOrCreate returns the existing breaker for the service or creates
	// one with the given config.
	GetOrCreate(serviceName string, config Config)

	// Execute runs fn through the service's breaker. When the breaker is
	// open the call fails immediately with an error wrapping
	// ErrBreakerOpen and fn is not invoked.
	Execute(serviceName string, fn func() (any, error)) (any, error)

	// GetState returns the current state for the service.
	GetState(serviceName string) State

	// GetSnapshot returns state, counts and the open transition instant.
	GetSnapshot(serviceName string) Snapshot

	// IsHealthy reports whether the breaker is closed.
	IsHealthy(serviceName string) bool

	// Reset recreates the breaker in the closed state.
	Reset(serviceName string)

	// RegisterStateChangeListener subscribes to state transitions.
	RegisterStateChangeListener(listener StateChangeListener)
}

// StateChangeListener is notified when a breaker changes state. Callbacks
// run on their own goroutine and must not block indefinitely.
type StateChangeListener interface {
	OnStateChange(serviceName string, from State, to State)
}

// StateChangeListenerFunc adapts a function to the StateChangeListener
// interface.
type StateChangeListenerFunc func(serviceName string, from State, to State)

// OnStateChange implements StateChangeListener.
func (f StateChangeListenerFunc) OnStateChange(serviceName string, from State, to State) {
	f(serviceName, from, to)
}
