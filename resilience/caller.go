package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/circuitbreaker"
	"github.com/LerianStudio/lib-resilience/resilience/fallback"
	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/retry"
)

// Result is the outcome of a resilient call. When FromCache is true the
// live path failed terminally and Value is the last-known-good response;
// CachedAt lets the caller decide whether that staleness is acceptable.
type Result struct {
	Value     any
	FromCache bool
	CachedAt  time.Time
}

// DefaultRetryable retries everything except breaker fast-fails: once the
// breaker is open, further attempts cannot succeed until the cool-down
// elapses, so the sequence aborts immediately.
func DefaultRetryable(err error) bool {
	return !errors.Is(err, circuitbreaker.ErrBreakerOpen)
}

// Caller composes the downstream call path: retry wraps the circuit
// breaker, which wraps the real operation, with the fallback cache fed on
// success and consulted only after a terminal failure.
//
// The breaker observes every individual attempt, not just the sequence's
// final verdict: repeated transient failures feed the rolling window even
// when a later attempt succeeds, so a flapping dependency still trips the
// breaker.
type Caller struct {
	serviceName string
	breakers    circuitbreaker.Manager
	cache       *fallback.Cache
	retrier     *retry.Coordinator
	logger      log.Logger
}

// NewCaller wires a resilient call path for one downstream service. The
// breaker for serviceName is created on the shared manager if absent. A
// nil Retryable on the policy falls back to DefaultRetryable.
func NewCaller(
	serviceName string,
	breakers circuitbreaker.Manager,
	breakerConfig circuitbreaker.Config,
	policy retry.Policy,
	cache *fallback.Cache,
	logger log.Logger,
) *Caller {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	breakers.GetOrCreate(serviceName, breakerConfig)

	if policy.Retryable == nil {
		policy.Retryable = DefaultRetryable
	}

	return &Caller{
		serviceName: serviceName,
		breakers:    breakers,
		cache:       cache,
		retrier:     retry.NewCoordinator(policy, logger),
		logger:      logger,
	}
}

// Call runs op through retry and the circuit breaker. On success the
// fallback cache is refreshed under key. On terminal failure (retry budget
// exhausted or breaker open) the cache is consulted; a hit returns a
// degraded Result instead of the error, a miss surfaces the original
// failure.
func (c *Caller) Call(ctx context.Context, key string, op func(ctx context.Context) (any, error)) (Result, error) {
	value, err := c.retrier.Execute(ctx, func(ctx context.Context) (any, error) {
		return c.breakers.Execute(c.serviceName, func() (any, error) {
			return op(ctx)
		})
	})

	if err == nil {
		if c.cache != nil {
			c.cache.Put(key, value)
		}

		return Result{Value: value}, nil
	}

	if c.cache == nil {
		return Result{}, err
	}

	entry, cacheErr := c.cache.Get(key)
	if cacheErr != nil {
		// Nothing cached; the original failure is the answer.
		return Result{}, err
	}

	c.logger.Warnf("live call for %q failed (%v), serving cached value from %s",
		key, err, entry.CachedAt.Format(time.RFC3339))

	return Result{Value: entry.Value, FromCache: true, CachedAt: entry.CachedAt}, nil
}
