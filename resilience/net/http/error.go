package http

import (
	"errors"
	"net/http"

	"github.com/LerianStudio/lib-resilience/resilience"
	"github.com/LerianStudio/lib-resilience/resilience/circuitbreaker"
	"github.com/LerianStudio/lib-resilience/resilience/lease"
	"github.com/LerianStudio/lib-resilience/resilience/retry"
	"github.com/gofiber/fiber/v2"
)

// WithError translates the resilience error taxonomy into HTTP responses.
//
// Lease conflicts surface as 409 with the blocking holder named, so
// clients see "resource locked by <holder>" rather than a generic error.
// Breaker fast-fails and exhausted retries both map to 503: the dependency
// is unavailable and the caller should back off.
func WithError(c *fiber.Ctx, err error) error {
	var conflict *lease.ConflictError

	switch {
	case errors.As(err, &conflict):
		return c.Status(http.StatusConflict).JSON(resilience.Response{
			Code:    "LEASE_CONFLICT",
			Title:   "Resource Locked",
			Message: conflict.Error(),
		})
	case errors.Is(err, lease.ErrLeaseNotFound):
		return c.Status(http.StatusNotFound).JSON(resilience.Response{
			Code:    "LEASE_NOT_FOUND",
			Title:   "Lease Not Found",
			Message: "No active lease exists for the resource.",
		})
	case errors.Is(err, circuitbreaker.ErrBreakerOpen):
		return c.Status(http.StatusServiceUnavailable).JSON(resilience.Response{
			Code:    "DEPENDENCY_UNAVAILABLE",
			Title:   "Dependency Unavailable",
			Message: "The downstream dependency is temporarily unavailable. Please retry later.",
		})
	case errors.Is(err, retry.ErrRetryExhausted):
		return c.Status(http.StatusServiceUnavailable).JSON(resilience.Response{
			Code:    "RETRY_EXHAUSTED",
			Title:   "Dependency Unavailable",
			Message: "The operation failed after all retry attempts.",
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(resilience.Response{
			Code:    "INTERNAL_ERROR",
			Title:   "Internal Error",
			Message: "An unexpected error occurred.",
		})
	}
}
