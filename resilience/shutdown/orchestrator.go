package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
)

// ErrShutdownInProgress indicates a registration attempted after shutdown
// began.
var ErrShutdownInProgress = errors.New("shutdown: already in progress")

// ErrCleanupFailure is the sentinel matched by every CleanupError.
var ErrCleanupFailure = errors.New("shutdown: cleanup failure")

// ErrCleanupAbandoned marks a cleanup that was still running when its
// share of the shutdown deadline elapsed.
var ErrCleanupAbandoned = errors.New("shutdown: cleanup abandoned at deadline")

// DefaultDeadline bounds the whole shutdown sequence.
const DefaultDeadline = 30 * time.Second

// CleanupFunc releases one registered resource. It should honor ctx, which
// carries the resource's share of the global deadline.
type CleanupFunc func(ctx context.Context) error

// CleanupError reports the failure of one resource's teardown. Failures
// are collected and never abort the remaining sequence.
type CleanupError struct {
	Resource string
	Err      error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup of %q failed: %v", e.Resource, e.Err)
}

// Unwrap exposes the underlying error.
func (e *CleanupError) Unwrap() error { return e.Err }

// Is matches the ErrCleanupFailure sentinel.
func (e *CleanupError) Is(target error) bool { return target == ErrCleanupFailure }

type resource struct {
	name    string
	cleanup CleanupFunc
}

// Orchestrator guarantees an orderly, time-bounded teardown of every
// registered resource, exactly once, on a termination trigger.
//
// Resources release in strict reverse-of-registration (LIFO) order so
// dependents are torn down before their dependencies. Cleanup execution is
// sequential, one resource at a time.
type Orchestrator struct {
	mu        sync.Mutex
	resources []resource
	deadline  time.Duration
	logger    log.Logger

	// inflight is the single completion handle every initiator awaits.
	// It doubles as the "shutdown started" flag; a separate boolean would
	// reintroduce the check-then-set race.
	inflight chan struct{}
	result   error
}

// NewOrchestrator creates an Orchestrator with the default deadline. A nil
// logger falls back to the no-op logger.
func NewOrchestrator(logger log.Logger) *Orchestrator {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Orchestrator{
		deadline: DefaultDeadline,
		logger:   logger,
	}
}

// WithDeadline overrides the global shutdown deadline.
func (o *Orchestrator) WithDeadline(d time.Duration) *Orchestrator {
	if d > 0 {
		o.deadline = d
	}

	return o
}

// Register adds a resource to be cleaned up on shutdown. Registration is
// rejected with ErrShutdownInProgress once shutdown has started.
func (o *Orchestrator) Register(name string, cleanup CleanupFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inflight != nil {
		return ErrShutdownInProgress
	}

	o.resources = append(o.resources, resource{name: name, cleanup: cleanup})

	o.logger.Debugf("registered shutdown resource %q (position %d)", name, len(o.resources))

	return nil
}

// Registered returns the number of resources still awaiting cleanup.
func (o *Orchestrator) Registered() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.resources)
}

// Initiate runs the shutdown sequence exactly once. Concurrent and
// repeated invocations await the same in-flight completion and observe the
// same collected result.
//
// The returned error joins every CleanupError; a nil return means every
// resource released cleanly. ctx only bounds this caller's wait, never the
// sequence itself.
func (o *Orchestrator) Initiate(ctx context.Context) error {
	o.mu.Lock()

	if o.inflight != nil {
		done := o.inflight
		o.mu.Unlock()

		select {
		case <-done:
			return o.collectedResult()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	o.inflight = done

	pending := make([]resource, len(o.resources))
	copy(pending, o.resources)
	o.resources = nil

	o.mu.Unlock()

	result := o.drain(pending)

	o.mu.Lock()
	o.result = result
	o.mu.Unlock()

	close(done)

	return result
}

// drain releases resources in LIFO order, giving each remaining cleanup an
// equal share of whatever is left of the global deadline. A cleanup still
// running when its share elapses is abandoned and logged; the sequence
// proceeds regardless.
func (o *Orchestrator) drain(pending []resource) error {
	o.logger.Infof("shutdown initiated: draining %d resources within %v", len(pending), o.deadline)

	deadlineAt := time.Now().Add(o.deadline)

	var failures []error

	for i := len(pending) - 1; i >= 0; i-- {
		res := pending[i]
		remaining := time.Until(deadlineAt)

		if remaining <= 0 {
			o.logger.Errorf("shutdown deadline reached, abandoning cleanup of %q", res.name)

			failures = append(failures, &CleanupError{Resource: res.name, Err: ErrCleanupAbandoned})

			continue
		}

		share := remaining / time.Duration(i+1)

		if err := o.runCleanup(res, share); err != nil {
			failures = append(failures, &CleanupError{Resource: res.name, Err: err})
		}
	}

	if len(failures) > 0 {
		o.logger.Errorf("shutdown completed with %d cleanup failures", len(failures))

		return errors.Join(failures...)
	}

	o.logger.Infof("shutdown completed cleanly")

	return nil
}

// runCleanup awaits one cleanup up to its deadline share. Panics inside a
// cleanup are captured as that resource's failure so the remaining
// resources still release.
func (o *Orchestrator) runCleanup(res resource, share time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), share)
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("panic: %v", r)
			}
		}()

		errCh <- res.cleanup(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			o.logger.Errorf("cleanup of %q failed: %v", res.name, err)

			return err
		}

		o.logger.Debugf("cleaned up %q", res.name)

		return nil
	case <-ctx.Done():
		// The goroutine is left behind on purpose: the deadline is the
		// backstop, not a forced kill of in-flight work.
		o.logger.Errorf("cleanup of %q still running after %v, abandoning", res.name, share)

		return ErrCleanupAbandoned
	}
}

func (o *Orchestrator) collectedResult() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.result
}
