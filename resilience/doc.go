// Package resilience is the operational core keeping a service correct and
// available despite partial failures of its downstream dependency: lease
// arbitration over shared records, circuit breaking with a last-known-good
// fallback, bounded retries, multi-facet health verdicts, and ordered
// shutdown.
//
// The root package composes the call path; the mechanisms live in
// subpackages (lease, circuitbreaker, fallback, retry, health, shutdown)
// and the probe/transport surface in net/http and server.
package resilience
