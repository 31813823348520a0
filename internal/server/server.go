package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/config"
	"github.com/jackzampolin/concierge/internal/extract"
	"github.com/jackzampolin/concierge/internal/providers"
	"github.com/jackzampolin/concierge/internal/server/endpoints"
	"github.com/jackzampolin/concierge/internal/svcctx"
)

// Server is the main Concierge HTTP server.
// It creates the model client on start and closes it on shutdown.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	logger     *slog.Logger

	generator providers.Generator
	// ownsGenerator is false when the generator was injected through Config.
	ownsGenerator bool

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: server.host from config)
	Host string
	// Port is the port to listen on (default: server.port from config)
	Port string
	// ConfigManager provides the loaded configuration
	ConfigManager *config.Manager
	// Generator overrides the model client built from configuration
	Generator providers.Generator
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration. The model client
// is created by Start unless Config.Generator is set, in which case the
// server is ready to extract immediately.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	appCfg := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		appCfg = cfg.ConfigManager.Get()
	}
	if cfg.Host == "" {
		cfg.Host = appCfg.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = appCfg.Server.Port
	}

	s := &Server{
		cfg:    appCfg,
		logger: cfg.Logger,
		services: &svcctx.Services{
			Config: appCfg,
			Logger: cfg.Logger,
		},
	}

	if cfg.Generator != nil {
		if err := s.initExtractor(cfg.Generator); err != nil {
			return nil, err
		}
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:     s.withServices(mux),
		ReadTimeout: 60 * time.Second,
		// Batches run one model call per document before responding.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// initExtractor wires the extraction service around gen.
func (s *Server) initExtractor(gen providers.Generator) error {
	svc, err := extract.NewService(extract.Config{
		Generator:        gen,
		Backend:          extract.Backend(s.cfg.Extraction.Backend),
		DefaultMediaType: s.cfg.Extraction.DefaultMediaType,
		HintMaxChars:     s.cfg.Extraction.HintMaxChars,
		Logger:           s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create extraction service: %w", err)
	}

	s.mu.Lock()
	s.generator = gen
	s.services.Extractor = svc
	s.mu.Unlock()
	return nil
}

// Start validates the configuration, creates the model client and serves
// HTTP. It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.Extractor() == nil {
		if err := s.cfg.Validate(); err != nil {
			s.setNotRunning()
			return fmt.Errorf("invalid configuration: %w", err)
		}
		gen, err := providers.New(ctx, s.cfg.ToProviderConfig(s.logger))
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("failed to create model client: %w", err)
		}
		s.ownsGenerator = true
		if err := s.initExtractor(gen); err != nil {
			s.setNotRunning()
			return err
		}
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown drains HTTP requests and closes the model client.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if c, ok := s.generator.(io.Closer); ok && s.ownsGenerator {
		if err := c.Close(); err != nil {
			s.logger.Error("model client close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Extractor returns the extraction service.
// Returns nil until the model client is ready.
func (s *Server) Extractor() *extract.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services.Extractor
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the root handler with services attached.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		services := *s.services
		s.mu.RUnlock()
		ctx := svcctx.WithServices(r.Context(), &services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the model client is ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svcctx.ExtractorFrom(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
