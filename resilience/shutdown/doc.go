// Package shutdown coordinates ordered, time-bounded teardown of process
// resources: LIFO release, a global deadline, collected per-resource
// failures, and idempotent initiation where every trigger awaits the same
// in-flight completion.
package shutdown
