// Package api provides the HTTP REST API and WebSocket server for the
// Sengled bridge.
//
// It exposes the device registry, entity state, command dispatch, and bridge
// metrics to user interfaces and supervisors (Home Assistant, web admin,
// curl).
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/bridge"
	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/entity"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// BridgeStats reports live MQTT bridge counters for the metrics endpoint.
// It is satisfied by *bridge.Bridge.
type BridgeStats interface {
	GetMetrics() bridge.Metrics
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Registry *device.Registry
	Entities *entity.Manager
	Bridge   BridgeStats                   // optional: metrics report disconnected without it
	History  device.StateHistoryRepository // optional: history endpoint 404s without it
	Version  string
}

// Server is the HTTP API server for the Sengled bridge.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	logger   *logging.Logger
	registry *device.Registry
	entities *entity.Manager
	bridge   BridgeStats
	history  device.StateHistoryRepository
	version  string
	server   *http.Server
	hub      *Hub
	cancel   context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called. The WebSocket hub is
// created immediately so the server can be registered as a bridge status
// handler before Start().
//
// Parameters:
//   - deps: Required dependencies (config, logger, registry, entities)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Entities == nil {
		return nil, fmt.Errorf("entity manager is required")
	}

	s := &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		logger:   deps.Logger,
		registry: deps.Registry,
		entities: deps.Entities,
		bridge:   deps.Bridge,
		history:  deps.History,
		version:  deps.Version,
	}
	s.hub = NewHub(s.wsCfg, s.logger)

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// HandleAttribute implements the bridge StatusHandler. Attribute reports are
// broadcast to WebSocket clients subscribed to "device.state_changed".
func (s *Server) HandleAttribute(mac, attribute, value string) {
	s.hub.Broadcast("device.state_changed", map[string]any{
		"mac":       mac,
		"attribute": attribute,
		"value":     value,
	})
}

// HandleAvailability implements the bridge StatusHandler. Availability
// transitions are broadcast to WebSocket clients subscribed to
// "device.availability_changed".
func (s *Server) HandleAvailability(mac string, online bool) {
	s.hub.Broadcast("device.availability_changed", map[string]any{
		"mac":    mac,
		"online": online,
	})
}
