package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerManager_NoServerConfigured(t *testing.T) {
	manager := NewServerManager(shutdown.NewOrchestrator(&log.NoneLogger{}), &log.NoneLogger{})

	err := manager.StartWithGracefulShutdown()
	assert.ErrorIs(t, err, ErrNoServerConfigured)
}

func TestServerManager_InstanceIDStable(t *testing.T) {
	manager := NewServerManager(shutdown.NewOrchestrator(nil), nil)

	assert.NotEmpty(t, manager.InstanceID())
	assert.Equal(t, manager.InstanceID(), manager.InstanceID())
}

func TestServerManager_ShutdownChannelDrainsResources(t *testing.T) {
	orchestrator := shutdown.NewOrchestrator(&log.NoneLogger{}).WithDeadline(5 * time.Second)

	var (
		mu    sync.Mutex
		order []string
	)

	record := func(name string) shutdown.CleanupFunc {
		return func(_ context.Context) error {
			mu.Lock()
			defer mu.Unlock()

			order = append(order, name)

			return nil
		}
	}

	// Components register during wiring, before the server starts.
	require.NoError(t, orchestrator.Register("lease-registry", record("lease-registry")))
	require.NoError(t, orchestrator.Register("breaker-manager", record("breaker-manager")))

	trigger := make(chan struct{})
	manager := NewServerManager(orchestrator, &log.NoneLogger{}).
		WithHTTPServer(fiber.New(fiber.Config{DisableStartupMessage: true}), "127.0.0.1:0").
		WithShutdownChannel(trigger)

	done := make(chan error, 1)

	go func() {
		done <- manager.StartWithGracefulShutdown()
	}()

	<-manager.ServersStarted()
	time.Sleep(50 * time.Millisecond)

	close(trigger)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("graceful shutdown did not complete")
	}

	// The HTTP server registered last, so it drains first; components
	// follow in reverse registration order.
	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"breaker-manager", "lease-registry"}, order)
	assert.Equal(t, 0, orchestrator.Registered())
}
