package health

import (
	"context"
	"testing"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/lease"
	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCheck(status CheckStatus) Check {
	return func(_ context.Context) CheckResult {
		return CheckResult{Status: status}
	}
}

func TestAggregator_LivenessAlwaysOK(t *testing.T) {
	aggregator := NewAggregator(&log.NoneLogger{})
	aggregator.RegisterCheck("dependency", staticCheck(CheckFail))

	// Readiness is down, liveness stays ok: independent axes.
	readiness := aggregator.Readiness(context.Background())
	require.Equal(t, StatusDown, readiness.Status)

	liveness := aggregator.Liveness(context.Background())
	assert.Equal(t, StatusOK, liveness.Status)
	assert.Equal(t, CheckPass, liveness.Checks["process"].Status)
}

func TestAggregator_ReadinessWorstOf(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []CheckStatus
		want     Status
	}{
		{name: "all pass", statuses: []CheckStatus{CheckPass, CheckPass}, want: StatusOK},
		{name: "warn degrades", statuses: []CheckStatus{CheckPass, CheckWarn}, want: StatusDegraded},
		{name: "fail wins over warn", statuses: []CheckStatus{CheckWarn, CheckFail, CheckPass}, want: StatusDown},
		{name: "no checks", statuses: nil, want: StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			aggregator := NewAggregator(&log.NoneLogger{})

			for i, status := range tc.statuses {
				aggregator.RegisterCheck(string(rune('a'+i)), staticCheck(status))
			}

			verdict := aggregator.Readiness(context.Background())
			assert.Equal(t, tc.want, verdict.Status)
			assert.Len(t, verdict.Checks, len(tc.statuses))
		})
	}
}

func TestAggregator_PanickingCheckReportsFail(t *testing.T) {
	aggregator := NewAggregator(&log.NoneLogger{})
	aggregator.RegisterCheck("broken", func(_ context.Context) CheckResult {
		panic("boom")
	})
	aggregator.RegisterCheck("healthy", staticCheck(CheckPass))

	verdict := aggregator.Readiness(context.Background())

	assert.Equal(t, StatusDown, verdict.Status)
	assert.Equal(t, CheckFail, verdict.Checks["broken"].Status)
	assert.Equal(t, CheckPass, verdict.Checks["healthy"].Status)
}

func TestAggregator_StartupStateMachine(t *testing.T) {
	aggregator := NewAggregator(&log.NoneLogger{})

	assert.Equal(t, StartupNotStarted, aggregator.StartupStatus())
	assert.Equal(t, StatusDown, aggregator.Startup(context.Background()).Status)

	aggregator.BeginStartup()
	assert.Equal(t, StartupInProgress, aggregator.StartupStatus())
	assert.Equal(t, StatusDegraded, aggregator.Startup(context.Background()).Status)

	aggregator.CompleteStartup()
	assert.Equal(t, StartupComplete, aggregator.StartupStatus())
	assert.Equal(t, StatusOK, aggregator.Startup(context.Background()).Status)

	// One-way: never reverts.
	aggregator.BeginStartup()
	assert.Equal(t, StartupComplete, aggregator.StartupStatus())
}

func TestAggregator_UptimeAdvances(t *testing.T) {
	mock := clock.NewMock()
	aggregator := NewAggregatorWithClock(&log.NoneLogger{}, mock)

	mock.Add(90 * time.Second)

	verdict := aggregator.Liveness(context.Background())
	assert.Equal(t, "1m30s", verdict.Uptime)
	assert.Equal(t, mock.Now(), verdict.Timestamp)
}

func TestMemoryCheck(t *testing.T) {
	pass := MemoryCheck(1<<40, 1<<41)(context.Background())
	assert.Equal(t, CheckPass, pass.Status)

	fail := MemoryCheck(1, 1)(context.Background())
	assert.Equal(t, CheckFail, fail.Status)
	assert.Contains(t, fail.Detail, "heap")
}

func TestGoroutineCheck(t *testing.T) {
	pass := GoroutineCheck(100000, 200000)(context.Background())
	assert.Equal(t, CheckPass, pass.Status)

	warn := GoroutineCheck(1, 0)(context.Background())
	assert.Equal(t, CheckWarn, warn.Status)
}

func TestLeaseLoadCheck(t *testing.T) {
	registry := lease.NewRegistry(&log.NoneLogger{})

	check := LeaseLoadCheck(registry, 2, 3)

	assert.Equal(t, CheckPass, check(context.Background()).Status)

	_, err := registry.Acquire("task", "T-1", "agent-x")
	require.NoError(t, err)
	_, err = registry.Acquire("task", "T-2", "agent-x")
	require.NoError(t, err)

	assert.Equal(t, CheckWarn, check(context.Background()).Status)

	_, err = registry.Acquire("task", "T-3", "agent-x")
	require.NoError(t, err)

	result := check(context.Background())
	assert.Equal(t, CheckFail, result.Status)
	assert.Contains(t, result.Detail, "3 active leases")
}
