// Package health produces liveness, readiness and startup verdicts on
// demand. The three facets are independent axes: a degraded readiness
// never drags liveness down, and the startup facet only ever moves
// forward.
package health
