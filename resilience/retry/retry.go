package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/backoff"
	"github.com/LerianStudio/lib-resilience/resilience/log"
)

// ErrRetryExhausted indicates that every attempt of a retried operation
// failed. Use errors.Is against this sentinel; the typed ExhaustedError
// carries the attempt count and the last underlying cause.
var ErrRetryExhausted = errors.New("retry: attempts exhausted")

// ExhaustedError reports a terminal retry failure, preserving the last
// underlying error as its cause.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %v", e.Attempts, e.Last)
}

// Unwrap exposes the last underlying error to errors.Is / errors.As.
func (e *ExhaustedError) Unwrap() error { return e.Last }

// Is matches the ErrRetryExhausted sentinel.
func (e *ExhaustedError) Is(target error) bool { return target == ErrRetryExhausted }

// Policy controls how an operation is retried. The zero value is not
// usable; start from DefaultPolicy.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff: the delay before retry i
	// (zero-based) is BaseDelay * 2^i.
	BaseDelay time.Duration
	// Jitter randomizes each delay into [0, delay) to avoid synchronized
	// retry storms.
	Jitter bool
	// Retryable classifies which failures consume a retry attempt.
	// Anything it rejects fails immediately without spending the budget.
	// Nil retries every error.
	Retryable func(error) bool
}

// DefaultPolicy returns three attempts with a one second base delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Jitter:      false,
	}
}

// Coordinator runs operations under a retry Policy. Attempts of one logical
// call are strictly sequential, and backoff sleeps happen with no component
// lock held.
type Coordinator struct {
	policy Policy
	logger log.Logger
}

// NewCoordinator creates a Coordinator. A nil logger falls back to the
// no-op logger.
func NewCoordinator(policy Policy, logger log.Logger) *Coordinator {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return &Coordinator{policy: policy, logger: logger}
}

// Execute runs op until it succeeds, fails terminally, or the attempt
// budget is spent. Exhausting the budget returns an *ExhaustedError
// wrapping the last error; a non-retryable error is returned as-is.
func (c *Coordinator) Execute(ctx context.Context, op func(ctx context.Context) (any, error)) (any, error) {
	var lastErr error

	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff.Exponential(c.policy.BaseDelay, attempt-1)
			if c.policy.Jitter {
				delay = backoff.FullJitter(delay)
			}

			c.logger.Debugf("retrying in %v (attempt %d/%d): %v",
				delay, attempt+1, c.policy.MaxAttempts, lastErr)

			if err := backoff.SleepWithContext(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if c.policy.Retryable != nil && !c.policy.Retryable(err) {
			c.logger.Debugf("error not retryable, failing immediately: %v", err)

			return nil, err
		}
	}

	c.logger.Warnf("all %d attempts failed, last error: %v", c.policy.MaxAttempts, lastErr)

	return nil, &ExhaustedError{Attempts: c.policy.MaxAttempts, Last: lastErr}
}
