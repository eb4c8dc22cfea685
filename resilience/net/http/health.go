package http

import (
	"net/http"

	"github.com/LerianStudio/lib-resilience/resilience/health"
	"github.com/gofiber/fiber/v2"
)

// LivenessHandler surfaces the shallow "process responsive" facet. It only
// returns a non-200 when the process is down, never because readiness is
// degraded.
func LivenessHandler(aggregator *health.Aggregator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verdict := aggregator.Liveness(c.UserContext())

		return c.Status(verdictStatusCode(verdict.Status)).JSON(verdict)
	}
}

// ReadinessHandler surfaces the "able to serve traffic" facet with the
// full per-check breakdown. A degraded verdict still returns 200 so load
// balancers keep routing; only a failing check returns 503.
func ReadinessHandler(aggregator *health.Aggregator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verdict := aggregator.Readiness(c.UserContext())

		return c.Status(verdictStatusCode(verdict.Status)).JSON(verdict)
	}
}

// StartupHandler surfaces initialization progress: 503 until startup
// completes, 200 afterwards.
func StartupHandler(aggregator *health.Aggregator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verdict := aggregator.Startup(c.UserContext())

		code := http.StatusServiceUnavailable
		if verdict.Status == health.StatusOK {
			code = http.StatusOK
		}

		return c.Status(code).JSON(verdict)
	}
}

// RegisterHealthRoutes mounts the three probe endpoints on the app.
func RegisterHealthRoutes(app *fiber.App, aggregator *health.Aggregator) {
	app.Get("/health/live", LivenessHandler(aggregator))
	app.Get("/health/ready", ReadinessHandler(aggregator))
	app.Get("/health/startup", StartupHandler(aggregator))
}

func verdictStatusCode(status health.Status) int {
	if status == health.StatusDown {
		return http.StatusServiceUnavailable
	}

	return http.StatusOK
}
