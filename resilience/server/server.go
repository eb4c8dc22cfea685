package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrNoServerConfigured indicates the manager was started without an HTTP
// server attached.
var ErrNoServerConfigured = errors.New("no server configured: use WithHTTPServer()")

// ServerManager ties a fiber app to process lifecycle: it starts the
// server, waits for a termination trigger, and delegates teardown to the
// shutdown orchestrator.
//
// The HTTP server is registered with the orchestrator at start time, after
// every component registered during wiring, so LIFO draining stops
// accepting traffic before the components underneath are released.
type ServerManager struct {
	app          *fiber.App
	address      string
	orchestrator *shutdown.Orchestrator
	logger       log.Logger
	instanceID   string

	serversStarted     chan struct{}
	serversStartedOnce sync.Once
	shutdownChan       <-chan struct{}
	startupErrors      chan error
}

// NewServerManager creates a ServerManager bound to the given
// orchestrator. A nil logger falls back to the no-op logger.
func NewServerManager(orchestrator *shutdown.Orchestrator, logger log.Logger) *ServerManager {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &ServerManager{
		orchestrator:   orchestrator,
		logger:         logger,
		instanceID:     uuid.NewString(),
		serversStarted: make(chan struct{}),
		startupErrors:  make(chan error, 1),
	}
}

// WithHTTPServer configures the HTTP server for the manager.
func (sm *ServerManager) WithHTTPServer(app *fiber.App, address string) *ServerManager {
	sm.app = app
	sm.address = address

	return sm
}

// WithShutdownChannel configures a custom shutdown trigger, letting tests
// drive shutdown deterministically instead of relying on OS signals.
func (sm *ServerManager) WithShutdownChannel(ch <-chan struct{}) *ServerManager {
	sm.shutdownChan = ch

	return sm
}

// InstanceID returns the process instance identity surfaced in probe
// payloads and logs.
func (sm *ServerManager) InstanceID() string {
	return sm.instanceID
}

// ServersStarted returns a channel closed once the server goroutine has
// been launched. It signals launch, not that the socket is bound.
func (sm *ServerManager) ServersStarted() <-chan struct{} {
	return sm.serversStarted
}

// StartWithGracefulShutdown starts the HTTP server, blocks until a
// termination signal arrives (or the shutdown channel closes, or startup
// fails), then runs the orchestrator's drain sequence. The collected
// cleanup result is returned.
func (sm *ServerManager) StartWithGracefulShutdown() error {
	if sm.app == nil {
		return ErrNoServerConfigured
	}

	// Registered last so it is drained first.
	if err := sm.orchestrator.Register("http-server", func(ctx context.Context) error {
		return sm.app.ShutdownWithContext(ctx)
	}); err != nil {
		return fmt.Errorf("register http server cleanup: %w", err)
	}

	go func() {
		sm.logger.Infof("starting HTTP server on %s (instance %s)", sm.address, sm.instanceID)

		if err := sm.app.Listen(sm.address); err != nil {
			sm.logger.Errorf("HTTP server error: %v", err)

			select {
			case sm.startupErrors <- fmt.Errorf("HTTP server: %w", err):
			default:
			}
		}
	}()

	sm.serversStartedOnce.Do(func() {
		close(sm.serversStarted)
	})

	sm.awaitTrigger()

	sm.logger.Infof("termination trigger received, shutting down")

	result := sm.orchestrator.Initiate(context.Background())

	// Flushed after the drain so cleanup logging is not lost.
	if err := sm.logger.Sync(); err != nil {
		sm.logger.Errorf("failed to sync logger: %v", err)
	}

	return result
}

// awaitTrigger blocks until a shutdown trigger fires. In-flight work is
// not interrupted here; the orchestrator deadline is the sole backstop.
func (sm *ServerManager) awaitTrigger() {
	if sm.shutdownChan != nil {
		select {
		case <-sm.shutdownChan:
		case err := <-sm.startupErrors:
			sm.logger.Errorf("server startup failed: %v", err)
		}

		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		signal.Stop(c)
	case err := <-sm.startupErrors:
		sm.logger.Errorf("server startup failed: %v", err)
	}
}
