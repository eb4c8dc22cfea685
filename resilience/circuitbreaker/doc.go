// Package circuitbreaker isolates a failing downstream dependency: once
// the error rate over a rolling window crosses the configured threshold,
// calls fast-fail without touching the dependency until a cool-down
// elapses and limited trial traffic proves recovery.
//
// Use NewManager to create per-service breakers, then run calls through
// Manager.Execute so failures are tracked consistently across callers.
package circuitbreaker
