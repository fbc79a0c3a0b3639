package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/farm-command-bridge/internal/command"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/config"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/logging"
)

// defaultShutdownTimeout is used when the config leaves the shutdown timeout at zero.
const defaultShutdownTimeout = 10 * time.Second

// Dispatcher sends a command and returns its tagged outcome.
// Satisfied by *command.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd command.Command) command.Outcome
}

// HealthChecker reports whether the command transport is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Metrics    config.MetricsConfig
	Logger     *logging.Logger
	Dispatcher Dispatcher
	Health     HealthChecker       // optional: /health always reports ok without it
	Gatherer   prometheus.Gatherer // optional: /metrics is not mounted without it
	Transport  string
	Version    string
}

// Server is the HTTP facade of the command bridge.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	metricsCfg config.MetricsConfig
	logger     *logging.Logger
	dispatcher Dispatcher
	health     HealthChecker
	gatherer   prometheus.Gatherer
	transport  string
	version    string

	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, dispatcher)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	return &Server{
		cfg:        deps.Config,
		metricsCfg: deps.Metrics,
		logger:     deps.Logger,
		dispatcher: deps.Dispatcher,
		health:     deps.Health,
		gatherer:   deps.Gatherer,
		transport:  deps.Transport,
		version:    deps.Version,
	}, nil
}

// Start binds the listener and serves in a background goroutine.
//
// Binding happens synchronously so a port already in use is reported here
// rather than logged later.
//
// Returns:
//   - error: If the address cannot be bound
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.logger.Info("API server starting", "address", ln.Addr().String(), "transport", s.transport)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to the configured shutdown timeout for in-flight requests,
// then forcefully closes remaining connections. Dispatches still running in
// the worker pool are not waited for.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	timeout := time.Duration(s.cfg.Timeouts.Shutdown) * time.Second
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
