package circuitbreaker

import "time"

// Config holds per-service circuit breaker settings.
type Config struct {
	// MaxRequests is the number of trial calls admitted in half-open.
	MaxRequests uint32
	// Interval is the length of the rolling outcome window while closed;
	// counts reset when it elapses.
	Interval time.Duration
	// CoolDown is how long the breaker stays open before moving to
	// half-open. A failed trial call reopens the breaker and restarts the
	// cool-down.
	CoolDown time.Duration
	// ConsecutiveFailures trips the breaker regardless of ratio.
	ConsecutiveFailures uint32
	// FailureRatio trips the breaker once at least MinRequests outcomes
	// were observed in the window.
	FailureRatio float64
	// MinRequests is the minimum sample size before FailureRatio applies.
	MinRequests uint32
	// IsSuccessful classifies call outcomes: errors it accepts do not
	// count toward the failure ratio (e.g. expected 4xx responses). Nil
	// counts every error as a failure.
	IsSuccessful func(err error) bool
}

// DefaultConfig provides balanced settings for most services.
func DefaultConfig() Config {
	return Config{
		MaxRequests:         1,
		Interval:            time.Minute,
		CoolDown:            30 * time.Second,
		ConsecutiveFailures: 10,
		FailureRatio:        0.5,
		MinRequests:         10,
	}
}

// HTTPServiceConfig is tuned for a single external REST dependency:
// faster failure detection and a shorter cool-down.
func HTTPServiceConfig() Config {
	return Config{
		MaxRequests:         1,
		Interval:            time.Minute,
		CoolDown:            15 * time.Second,
		ConsecutiveFailures: 5,
		FailureRatio:        0.5,
		MinRequests:         5,
	}
}

// ConservativeConfig tolerates more failures before tripping.
func ConservativeConfig() Config {
	return Config{
		MaxRequests:         3,
		Interval:            5 * time.Minute,
		CoolDown:            time.Minute,
		ConsecutiveFailures: 25,
		FailureRatio:        0.6,
		MinRequests:         20,
	}
}
