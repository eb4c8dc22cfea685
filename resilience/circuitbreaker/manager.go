package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/benbjohnson/clock"
	"github.com/sony/gobreaker"
)

type manager struct {
	breakers  map[string]*gobreaker.CircuitBreaker
	configs   map[string]Config
	listeners []StateChangeListener
	clock     clock.Clock
	mu        sync.RWMutex
	logger    log.Logger

	// openedAt has its own guard: gobreaker fires OnStateChange while
	// holding its internal lock, so touching mu there could deadlock
	// against readers that hold mu and query breaker state.
	openedMu sync.Mutex
	openedAt map[string]time.Time
}

// NewManager creates a circuit breaker manager. A nil logger falls back to
// the no-op logger.
//
//nolint:ireturn
func NewManager(logger log.Logger) Manager {
	return NewManagerWithClock(logger, clock.New())
}

// NewManagerWithClock creates a manager with an injectable time source for
// the opened-at bookkeeping.
//
//nolint:ireturn
func NewManagerWithClock(logger log.Logger, clk clock.Clock) Manager {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &manager{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		configs:  make(map[string]Config),
		openedAt: make(map[string]time.Time),
		clock:    clk,
		logger:   logger,
	}
}

func (m *manager) GetOrCreate(serviceName string, config Config) {
	m.mu.RLock()
	_, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if exists {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if _, exists = m.breakers[serviceName]; exists {
		return
	}

	m.breakers[serviceName] = gobreaker.NewCircuitBreaker(m.settings(serviceName, config))
	m.configs[serviceName] = config

	m.logger.Infof("created circuit breaker for service: %s", serviceName)
}

// settings translates Config into gobreaker settings. gobreaker evaluates
// ReadyToTrip under the same lock that records the outcome, so a breach
// transitions to open exactly once even under concurrent failures.
func (m *manager) settings(serviceName string, config Config) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "service-" + serviceName,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.CoolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.ConsecutiveFailures >= config.ConsecutiveFailures ||
				(counts.Requests >= config.MinRequests && failureRatio >= config.FailureRatio)
		},
		IsSuccessful: config.IsSuccessful,
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			m.handleStateChange(serviceName, from, to)
		},
	}
}

func (m *manager) Execute(serviceName string, fn func() (any, error)) (any, error) {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s (call GetOrCreate first)", ErrBreakerNotFound, serviceName)
	}

	result, err := breaker.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState {
			m.logger.Warnf("circuit breaker [%s] is open, request rejected immediately", serviceName)

			return nil, fmt.Errorf("service %s unavailable: %w", serviceName, ErrBreakerOpen)
		}

		if err == gobreaker.ErrTooManyRequests {
			m.logger.Warnf("circuit breaker [%s] is half-open, trial slot taken", serviceName)

			return nil, fmt.Errorf("service %s recovering: %w", serviceName, ErrBreakerOpen)
		}
	}

	return result, err
}

func (m *manager) GetState(serviceName string) State {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if !exists {
		return StateUnknown
	}

	return convertState(breaker.State())
}

func (m *manager) GetSnapshot(serviceName string) Snapshot {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	m.openedMu.Lock()
	openedAt := m.openedAt[serviceName]
	m.openedMu.Unlock()

	if !exists {
		return Snapshot{State: StateUnknown}
	}

	counts := breaker.Counts()

	return Snapshot{
		State: convertState(breaker.State()),
		Counts: Counts{
			Requests:             counts.Requests,
			TotalSuccesses:       counts.TotalSuccesses,
			TotalFailures:        counts.TotalFailures,
			ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
			ConsecutiveFailures:  counts.ConsecutiveFailures,
		},
		OpenedAt: openedAt,
	}
}

func (m *manager) IsHealthy(serviceName string) bool {
	// Only closed counts as healthy; open and half-open both mean the
	// dependency is not trusted yet.
	return m.GetState(serviceName) == StateClosed
}

func (m *manager) Reset(serviceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, exists := m.configs[serviceName]
	if !exists {
		return
	}

	m.logger.Infof("resetting circuit breaker for service: %s", serviceName)

	m.breakers[serviceName] = gobreaker.NewCircuitBreaker(m.settings(serviceName, config))

	m.openedMu.Lock()
	delete(m.openedAt, serviceName)
	m.openedMu.Unlock()
}

func (m *manager) RegisterStateChangeListener(listener StateChangeListener) {
	if listener == nil {
		m.logger.Warnf("attempted to register a nil state change listener")

		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, listener)
}

func (m *manager) handleStateChange(serviceName string, from gobreaker.State, to gobreaker.State) {
	m.logger.Warnf("circuit breaker [%s] state changed: %s -> %s", serviceName, from.String(), to.String())

	m.openedMu.Lock()
	if to == gobreaker.StateOpen {
		m.openedAt[serviceName] = m.clock.Now()
	} else if to == gobreaker.StateClosed {
		delete(m.openedAt, serviceName)
	}
	m.openedMu.Unlock()

	m.mu.RLock()
	listeners := make([]StateChangeListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	fromState := convertState(from)
	toState := convertState(to)

	for _, listener := range listeners {
		// Notify off the breaker's critical path.
		go func(l StateChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Errorf("state change listener panic for service %s: %v", serviceName, r)
				}
			}()

			l.OnStateChange(serviceName, fromState, toState)
		}(listener)
	}
}

func convertState(state gobreaker.State) State {
	switch state {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateUnknown
	}
}
