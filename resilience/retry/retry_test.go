package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
	}
}

func TestCoordinator_SucceedsOnThirdAttempt(t *testing.T) {
	coordinator := NewCoordinator(fastPolicy(3), &log.NoneLogger{})

	calls := 0

	result, err := coordinator.Execute(context.Background(), func(_ context.Context) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}

		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 3, calls)
}

func TestCoordinator_ExhaustedWrapsLastError(t *testing.T) {
	coordinator := NewCoordinator(fastPolicy(3), &log.NoneLogger{})

	last := errors.New("still failing")
	calls := 0

	_, err := coordinator.Execute(context.Background(), func(_ context.Context) (any, error) {
		calls++

		return nil, last
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.ErrorIs(t, err, last)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, last, exhausted.Last)
}

func TestCoordinator_NonRetryableFailsImmediately(t *testing.T) {
	terminal := errors.New("bad request")

	policy := fastPolicy(5)
	policy.Retryable = func(err error) bool {
		return !errors.Is(err, terminal)
	}

	coordinator := NewCoordinator(policy, &log.NoneLogger{})

	calls := 0

	_, err := coordinator.Execute(context.Background(), func(_ context.Context) (any, error) {
		calls++

		return nil, terminal
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-retryable errors must not spend the budget")
	assert.Equal(t, terminal, err)
	assert.NotErrorIs(t, err, ErrRetryExhausted)
}

func TestCoordinator_ContextCancelDuringBackoff(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Hour}
	coordinator := NewCoordinator(policy, &log.NoneLogger{})

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := coordinator.Execute(ctx, func(_ context.Context) (any, error) {
		calls++

		return nil, errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCoordinator_SingleAttemptMinimum(t *testing.T) {
	coordinator := NewCoordinator(Policy{MaxAttempts: 0}, nil)

	calls := 0

	_, err := coordinator.Execute(context.Background(), func(_ context.Context) (any, error) {
		calls++

		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
