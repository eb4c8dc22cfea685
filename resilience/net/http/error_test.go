package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LerianStudio/lib-resilience/resilience/circuitbreaker"
	"github.com/LerianStudio/lib-resilience/resilience/lease"
	"github.com/LerianStudio/lib-resilience/resilience/retry"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/op", func(c *fiber.Ctx) error {
		return WithError(c, err)
	})

	return app
}

func TestWithError_LeaseConflictNamesHolder(t *testing.T) {
	conflict := &lease.ConflictError{ResourceType: "task", ResourceID: "T-1", Holder: "agent-x"}

	resp, err := errorApp(conflict).Test(httptest.NewRequest(http.MethodGet, "/op", nil))
	require.NoError(t, err)

	defer func() { require.NoError(t, resp.Body.Close()) }()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "LEASE_CONFLICT", body["code"])
	assert.Equal(t, "resource task/T-1 locked by agent-x", body["message"])
}

func TestWithError_StatusMapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{
			name: "lease not found",
			err:  lease.ErrLeaseNotFound,
			want: http.StatusNotFound,
			code: "LEASE_NOT_FOUND",
		},
		{
			name: "breaker open",
			err:  fmt.Errorf("service backend unavailable: %w", circuitbreaker.ErrBreakerOpen),
			want: http.StatusServiceUnavailable,
			code: "DEPENDENCY_UNAVAILABLE",
		},
		{
			name: "retry exhausted",
			err:  &retry.ExhaustedError{Attempts: 3, Last: errors.New("timeout")},
			want: http.StatusServiceUnavailable,
			code: "RETRY_EXHAUSTED",
		},
		{
			name: "unexpected",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
			code: "INTERNAL_ERROR",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := errorApp(tc.err).Test(httptest.NewRequest(http.MethodGet, "/op", nil))
			require.NoError(t, err)

			defer func() { require.NoError(t, resp.Body.Close()) }()

			assert.Equal(t, tc.want, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body["code"])
		})
	}
}
