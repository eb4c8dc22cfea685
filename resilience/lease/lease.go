package lease

import (
	"errors"
	"fmt"
	"time"
)

// ErrLeaseConflict indicates another holder currently owns the lease.
var ErrLeaseConflict = errors.New("lease: held by another holder")

// ErrLeaseNotFound indicates a release targeting an absent or expired lease.
var ErrLeaseNotFound = errors.New("lease: not found")

// ConflictError reports which holder blocks an acquire or release, so
// callers can surface "resource locked by <holder>" instead of a generic
// error.
type ConflictError struct {
	ResourceType string
	ResourceID   string
	Holder       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s/%s locked by %s", e.ResourceType, e.ResourceID, e.Holder)
}

// Is matches the ErrLeaseConflict sentinel.
func (e *ConflictError) Is(target error) bool { return target == ErrLeaseConflict }

// Key identifies a leasable logical resource.
type Key struct {
	Type string
	ID   string
}

func (k Key) String() string { return k.Type + "/" + k.ID }

// Lease is a time-bounded exclusive claim on a named logical resource.
// At most one non-expired Lease exists per Key at any instant.
type Lease struct {
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	HolderID     string    `json:"holderId"`
	AcquiredAt   time.Time `json:"acquiredAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Key returns the composite identity of the leased resource.
func (l Lease) Key() Key {
	return Key{Type: l.ResourceType, ID: l.ResourceID}
}

// ExpiredAt reports whether the lease is expired at the given instant.
func (l Lease) ExpiredAt(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
