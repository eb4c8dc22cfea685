package health

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/circuitbreaker"
	"github.com/LerianStudio/lib-resilience/resilience/lease"
	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"
)

// MemoryCheck reports heap usage against warn/fail ceilings in bytes.
func MemoryCheck(warnBytes, failBytes uint64) Check {
	return func(_ context.Context) CheckResult {
		var stats runtime.MemStats

		runtime.ReadMemStats(&stats)

		detail := fmt.Sprintf("heap %d MiB", stats.HeapAlloc/(1<<20))

		switch {
		case failBytes > 0 && stats.HeapAlloc >= failBytes:
			return CheckResult{Status: CheckFail, Detail: detail}
		case warnBytes > 0 && stats.HeapAlloc >= warnBytes:
			return CheckResult{Status: CheckWarn, Detail: detail}
		default:
			return CheckResult{Status: CheckPass, Detail: detail}
		}
	}
}

// GoroutineCheck treats goroutine count as a responsiveness signal: a
// runaway count usually means blocked handlers piling up.
func GoroutineCheck(warn, fail int) Check {
	return func(_ context.Context) CheckResult {
		count := runtime.NumGoroutine()
		detail := fmt.Sprintf("%d goroutines", count)

		switch {
		case fail > 0 && count >= fail:
			return CheckResult{Status: CheckFail, Detail: detail}
		case warn > 0 && count >= warn:
			return CheckResult{Status: CheckWarn, Detail: detail}
		default:
			return CheckResult{Status: CheckPass, Detail: detail}
		}
	}
}

// LeaseLoadCheck samples the number of active leases as a backpressure
// signal for in-flight mutations.
func LeaseLoadCheck(registry *lease.Registry, warn, fail int) Check {
	return func(_ context.Context) CheckResult {
		active := registry.ActiveCount()
		detail := fmt.Sprintf("%d active leases", active)

		switch {
		case fail > 0 && active >= fail:
			return CheckResult{Status: CheckFail, Detail: detail}
		case warn > 0 && active >= warn:
			return CheckResult{Status: CheckWarn, Detail: detail}
		default:
			return CheckResult{Status: CheckPass, Detail: detail}
		}
	}
}

// DependencyCheck reports downstream reachability by sampling circuit
// breaker state instead of probing the dependency on every health request.
// Samples are cached for a short TTL and concurrent probes within a window
// are collapsed through singleflight; a breaker state change invalidates
// the cached sample immediately.
type DependencyCheck struct {
	manager     circuitbreaker.Manager
	serviceName string
	ttl         time.Duration
	clock       clock.Clock

	group singleflight.Group

	mu        sync.Mutex
	cached    CheckResult
	sampledAt time.Time
}

// NewDependencyCheck creates a DependencyCheck for the given service and
// subscribes it to breaker state changes.
func NewDependencyCheck(manager circuitbreaker.Manager, serviceName string, ttl time.Duration) *DependencyCheck {
	return NewDependencyCheckWithClock(manager, serviceName, ttl, clock.New())
}

// NewDependencyCheckWithClock is NewDependencyCheck with an injectable
// time source.
func NewDependencyCheckWithClock(
	manager circuitbreaker.Manager,
	serviceName string,
	ttl time.Duration,
	clk clock.Clock,
) *DependencyCheck {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	check := &DependencyCheck{
		manager:     manager,
		serviceName: serviceName,
		ttl:         ttl,
		clock:       clk,
	}

	manager.RegisterStateChangeListener(check)

	return check
}

// Check implements the readiness Check contract.
func (d *DependencyCheck) Check(_ context.Context) CheckResult {
	d.mu.Lock()
	if !d.sampledAt.IsZero() && d.clock.Now().Sub(d.sampledAt) < d.ttl {
		cached := d.cached
		d.mu.Unlock()

		return cached
	}
	d.mu.Unlock()

	sampled, _, _ := d.group.Do(d.serviceName, func() (any, error) {
		result := d.sample()

		d.mu.Lock()
		d.cached = result
		d.sampledAt = d.clock.Now()
		d.mu.Unlock()

		return result, nil
	})

	result, ok := sampled.(CheckResult)
	if !ok {
		return CheckResult{Status: CheckFail, Detail: "sample unavailable"}
	}

	return result
}

// OnStateChange implements circuitbreaker.StateChangeListener: the cached
// sample is dropped so the next probe reflects the transition.
func (d *DependencyCheck) OnStateChange(_ string, _ circuitbreaker.State, _ circuitbreaker.State) {
	d.mu.Lock()
	d.sampledAt = time.Time{}
	d.mu.Unlock()
}

func (d *DependencyCheck) sample() CheckResult {
	snapshot := d.manager.GetSnapshot(d.serviceName)

	switch snapshot.State {
	case circuitbreaker.StateClosed:
		return CheckResult{Status: CheckPass, Detail: "reachable"}
	case circuitbreaker.StateHalfOpen:
		return CheckResult{Status: CheckWarn, Detail: "recovering"}
	case circuitbreaker.StateOpen:
		detail := "circuit open"
		if !snapshot.OpenedAt.IsZero() {
			detail = fmt.Sprintf("circuit open since %s", snapshot.OpenedAt.Format(time.RFC3339))
		}

		return CheckResult{Status: CheckFail, Detail: detail}
	default:
		return CheckResult{Status: CheckWarn, Detail: "no traffic observed"}
	}
}
