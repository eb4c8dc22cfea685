// Package lease provides in-memory, time-bounded mutual exclusion over
// named logical resources, so concurrent operations cannot mutate the same
// record at once.
//
// Leases are process-local and non-durable: this is request-level
// arbitration, not distributed locking or leader election.
package lease
