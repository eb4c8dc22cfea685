package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/benbjohnson/clock"
)

// Aggregator answers the three independent probe questions: is the process
// alive, is it able to serve traffic, and has initialization finished.
//
// It only reads the live state of other components and never raises: a
// check that errors or panics is reported as a fail for that one check.
type Aggregator struct {
	clock     clock.Clock
	startedAt time.Time
	startup   atomic.Int32
	logger    log.Logger

	mu     sync.RWMutex
	names  []string
	checks map[string]Check
}

// NewAggregator creates an Aggregator anchored at the current instant. A
// nil logger falls back to the no-op logger.
func NewAggregator(logger log.Logger) *Aggregator {
	return NewAggregatorWithClock(logger, clock.New())
}

// NewAggregatorWithClock creates an Aggregator with an injectable time
// source.
func NewAggregatorWithClock(logger log.Logger, clk clock.Clock) *Aggregator {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Aggregator{
		clock:     clk,
		startedAt: clk.Now(),
		logger:    logger,
		checks:    make(map[string]Check),
	}
}

// RegisterCheck adds a named readiness check. Registering an existing name
// replaces the previous check.
func (a *Aggregator) RegisterCheck(name string, check Check) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checks[name]; !exists {
		a.names = append(a.names, name)
	}

	a.checks[name] = check
}

// BeginStartup marks initialization as in progress. It has no effect once
// startup already advanced past NotStarted.
func (a *Aggregator) BeginStartup() {
	a.startup.CompareAndSwap(int32(StartupNotStarted), int32(StartupInProgress))
}

// CompleteStartup marks initialization as finished. The startup facet is
// one-way: once complete it never reverts.
func (a *Aggregator) CompleteStartup() {
	for {
		current := a.startup.Load()
		if current == int32(StartupComplete) {
			return
		}

		if a.startup.CompareAndSwap(current, int32(StartupComplete)) {
			a.logger.Infof("startup complete after %v", a.uptime())

			return
		}
	}
}

// StartupStatus returns the current startup state.
func (a *Aggregator) StartupStatus() StartupState {
	return StartupState(a.startup.Load())
}

// Liveness is the shallow facet: it reports ok whenever the process can
// respond at all, independent of readiness. It must never fail purely
// because readiness is degraded.
func (a *Aggregator) Liveness(_ context.Context) Verdict {
	return Verdict{
		Status: StatusOK,
		Checks: map[string]CheckResult{
			"process": {Status: CheckPass, Detail: "responsive"},
		},
		Timestamp: a.clock.Now(),
		Uptime:    a.uptime().String(),
	}
}

// Readiness evaluates every registered check and folds the outcomes: fail
// if any check fails, degraded if any warns, ok otherwise.
func (a *Aggregator) Readiness(ctx context.Context) Verdict {
	a.mu.RLock()
	names := make([]string, len(a.names))
	copy(names, a.names)

	checks := make(map[string]Check, len(a.checks))
	for name, check := range a.checks {
		checks[name] = check
	}
	a.mu.RUnlock()

	verdict := Verdict{
		Status:    StatusOK,
		Checks:    make(map[string]CheckResult, len(names)),
		Timestamp: a.clock.Now(),
		Uptime:    a.uptime().String(),
	}

	for _, name := range names {
		result := a.runCheck(ctx, name, checks[name])
		verdict.Checks[name] = result
		verdict.Status = worst(verdict.Status, result.Status)
	}

	return verdict
}

// Startup reports initialization progress: ok once complete, degraded
// while in progress, down before startup began.
func (a *Aggregator) Startup(_ context.Context) Verdict {
	state := a.StartupStatus()

	status := StatusDown

	switch state {
	case StartupComplete:
		status = StatusOK
	case StartupInProgress:
		status = StatusDegraded
	}

	return Verdict{
		Status: status,
		Checks: map[string]CheckResult{
			"startup": {Status: startupCheckStatus(state), Detail: state.String()},
		},
		Timestamp: a.clock.Now(),
		Uptime:    a.uptime().String(),
	}
}

// runCheck shields the aggregator from misbehaving checks: a panic is
// captured and reported as a fail for that check only.
func (a *Aggregator) runCheck(ctx context.Context, name string, check Check) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("health check %q panicked: %v", name, r)

			result = CheckResult{Status: CheckFail, Detail: "check panicked"}
		}
	}()

	return check(ctx)
}

func (a *Aggregator) uptime() time.Duration {
	return a.clock.Now().Sub(a.startedAt).Truncate(time.Millisecond)
}

func startupCheckStatus(state StartupState) CheckStatus {
	switch state {
	case StartupComplete:
		return CheckPass
	case StartupInProgress:
		return CheckWarn
	default:
		return CheckFail
	}
}
