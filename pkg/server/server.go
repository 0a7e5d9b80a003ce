package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/storage"
	"alice-hq/hassil-parser/pkg/syncer"
	"alice-hq/hassil-parser/pkg/telemetry/health"
	"alice-hq/hassil-parser/pkg/telemetry/tracing"
)

// Syncer is the part of syncer.Syncer the endpoints drive.
type Syncer interface {
	Run(ctx context.Context) (*syncer.Report, error)
	Notify(ctx context.Context) error
}

// Deps are the components served over HTTP. Syncer, Templates and Health
// are required; a nil Metrics or Events handler leaves its route out.
type Deps struct {
	Syncer    Syncer
	Templates storage.Store
	Health    *health.Checker
	Version   health.VersionInfo

	Metrics     http.Handler
	MetricsPath string

	Events http.Handler

	Logger *slog.Logger
}

// Server is the HTTP server of the template service.
type Server struct {
	config       *config.ServerConfig
	deps         Deps
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// NewServer creates a new server.
func NewServer(cfg *config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		deps:   deps,
		logger: logger.With("component", "server"),
	}
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.addr = listener.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address once started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", s.deps.Health.Handler())
	mux.Handle("HEAD /health", s.deps.Health.Handler())
	mux.Handle("GET /version", health.VersionHandler(s.deps.Version))
	mux.HandleFunc("POST /intents/sync", s.handleSync)
	mux.HandleFunc("POST /intents/trigger-entity-sync", s.handleTrigger)
	mux.HandleFunc("GET /intents/templates", s.handleTemplates)

	if s.deps.Metrics != nil {
		path := s.deps.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle("GET "+path, s.deps.Metrics)
	}
	if s.deps.Events != nil {
		mux.Handle("GET /events", s.deps.Events)
	}

	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	// Recovery is outermost.
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}
