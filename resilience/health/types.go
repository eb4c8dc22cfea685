package health

import (
	"context"
	"time"
)

// Status is the overall verdict of one health facet.
type Status string

const (
	// StatusOK means the facet is fully healthy.
	StatusOK Status = "ok"
	// StatusDegraded means the facet serves, but something warned.
	StatusDegraded Status = "degraded"
	// StatusDown means at least one check failed outright.
	StatusDown Status = "down"
)

// CheckStatus is the outcome of a single readiness check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// CheckResult carries the outcome and a human-readable detail for one
// check.
type CheckResult struct {
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// Check evaluates one aspect of readiness. Implementations should be cheap
// and must not block writers in the components they sample.
type Check func(ctx context.Context) CheckResult

// Verdict is a point-in-time health document. It is computed on demand and
// never persisted.
type Verdict struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
}

// StartupState tracks initialization progress. It only ever moves forward.
type StartupState int32

const (
	StartupNotStarted StartupState = iota
	StartupInProgress
	StartupComplete
)

// String returns the probe-document representation of the startup state.
func (s StartupState) String() string {
	switch s {
	case StartupNotStarted:
		return "not_started"
	case StartupInProgress:
		return "in_progress"
	case StartupComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// worst folds a check outcome into the running overall status: any fail
// wins over any warn, any warn wins over pass.
func worst(current Status, check CheckStatus) Status {
	switch {
	case check == CheckFail:
		return StatusDown
	case check == CheckWarn && current != StatusDown:
		return StatusDegraded
	default:
		return current
	}
}
