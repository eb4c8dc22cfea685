package lease

import (
	"sync"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/benbjohnson/clock"
)

// DefaultTTL is the lease lifetime applied when the caller does not
// override it.
const DefaultTTL = 30 * time.Minute

// Registry grants time-bounded mutual exclusion over named logical
// resources. Expiry is lazy: expired leases read as absent on the next
// access, there is no background sweeper.
//
// All methods are safe for concurrent use. One mutex guards the compound
// check-then-set in Acquire so concurrent acquirers on the same key can
// never both observe "no active lease".
type Registry struct {
	mu         sync.Mutex
	leases     map[Key]Lease
	clock      clock.Clock
	defaultTTL time.Duration
	logger     log.Logger
}

// NewRegistry creates an empty Registry with the default TTL and a
// wall-clock time source. A nil logger falls back to the no-op logger.
func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Registry{
		leases:     make(map[Key]Lease),
		clock:      clock.New(),
		defaultTTL: DefaultTTL,
		logger:     logger,
	}
}

// WithClock overrides the time source. Tests use a mock clock so expiry is
// exercised without real delays.
func (r *Registry) WithClock(c clock.Clock) *Registry {
	r.clock = c

	return r
}

// WithDefaultTTL overrides the TTL applied by Acquire.
func (r *Registry) WithDefaultTTL(ttl time.Duration) *Registry {
	if ttl > 0 {
		r.defaultTTL = ttl
	}

	return r
}

// Acquire claims the (resourceType, resourceID) lease for holder using the
// registry default TTL. See AcquireTTL.
func (r *Registry) Acquire(resourceType, resourceID, holder string) (Lease, error) {
	return r.AcquireTTL(resourceType, resourceID, holder, r.defaultTTL)
}

// AcquireTTL claims the lease for holder with an explicit TTL.
//
// It succeeds when no lease exists, the existing lease has expired, or the
// existing lease belongs to the same holder (renewal, TTL restarts from
// now). Acquiring over an expired lease is a normal success path, not an
// error. It fails with a *ConflictError wrapping ErrLeaseConflict while a
// different holder's lease is still valid.
func (r *Registry) AcquireTTL(resourceType, resourceID, holder string, ttl time.Duration) (Lease, error) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	key := Key{Type: resourceType, ID: resourceID}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	if current, ok := r.leases[key]; ok && !current.ExpiredAt(now) && current.HolderID != holder {
		r.logger.Debugf("lease %s denied for %s: held by %s until %s",
			key, holder, current.HolderID, current.ExpiresAt.Format(time.RFC3339))

		return Lease{}, &ConflictError{
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Holder:       current.HolderID,
		}
	}

	granted := Lease{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		HolderID:     holder,
		AcquiredAt:   now,
		ExpiresAt:    now.Add(ttl),
	}
	r.leases[key] = granted

	r.logger.Debugf("lease %s granted to %s until %s", key, holder, granted.ExpiresAt.Format(time.RFC3339))

	return granted, nil
}

// Release removes the lease when holder currently owns it.
//
// Releasing an absent or already-expired lease returns ErrLeaseNotFound;
// releasing someone else's valid lease returns a *ConflictError and leaves
// the current holder's lease untouched.
func (r *Registry) Release(resourceType, resourceID, holder string) error {
	key := Key{Type: resourceType, ID: resourceID}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.leases[key]
	if !ok || current.ExpiredAt(r.clock.Now()) {
		delete(r.leases, key)

		return ErrLeaseNotFound
	}

	if current.HolderID != holder {
		return &ConflictError{
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Holder:       current.HolderID,
		}
	}

	delete(r.leases, key)

	r.logger.Debugf("lease %s released by %s", key, holder)

	return nil
}

// Inspect returns the current lease for the resource. Expired leases read
// as absent.
func (r *Registry) Inspect(resourceType, resourceID string) (Lease, bool) {
	key := Key{Type: resourceType, ID: resourceID}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.leases[key]
	if !ok || current.ExpiredAt(r.clock.Now()) {
		return Lease{}, false
	}

	return current, true
}

// ActiveCount returns the number of non-expired leases. The health
// aggregator samples it as a backpressure signal; expired entries found
// along the way are dropped.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	active := 0

	for key, l := range r.leases {
		if l.ExpiredAt(now) {
			delete(r.leases, key)
			continue
		}

		active++
	}

	return active
}
