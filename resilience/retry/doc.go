// Package retry bounds transient-failure absorption for a single logical
// call: a fixed attempt budget, exponential backoff between attempts, and a
// caller-supplied allow-list deciding which errors are worth retrying.
package retry
