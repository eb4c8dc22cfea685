// Package server provides server lifecycle helpers: signal handling and
// delegation of ordered teardown to the shutdown orchestrator.
package server
