// Package http exposes the read-only probe endpoints for the health
// aggregator and maps the resilience error taxonomy onto HTTP responses.
package http
