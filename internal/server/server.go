package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	_ "github.com/raybanai/raybanai/docs/swagger" // register the OpenAPI spec
	"github.com/raybanai/raybanai/internal/analysis"
	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/internal/config"
	"github.com/raybanai/raybanai/internal/dedup"
	"github.com/raybanai/raybanai/internal/docstore"
	"github.com/raybanai/raybanai/internal/history"
	"github.com/raybanai/raybanai/internal/home"
	"github.com/raybanai/raybanai/internal/prompts"
	"github.com/raybanai/raybanai/internal/server/endpoints"
	"github.com/raybanai/raybanai/internal/svcctx"
	"github.com/raybanai/raybanai/internal/vision"
)

// Server is the RaybanAI HTTP server. It owns the background pieces of the
// pipeline: the history log writer, the dedup sweep, and the persistence
// fan-out, all stopped in order on shutdown.
type Server struct {
	httpServer  *http.Server
	configMgr   *config.Manager
	home        *home.Dir
	logger      *slog.Logger
	gate        *dedup.Gate
	historyLog  *history.Log
	analysisSvc *analysis.Service
	storeClient *docstore.Client

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 3103)
	Port string
	// Home is the raybanai home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "3103"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	c := cfg.ConfigManager.Get()

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		logger:    cfg.Logger,
	}

	s.storeClient = docstore.NewClient(c.Store.URL, c.Store.Timeout())

	settingsStore := config.NewSettingsStore(cfg.Home.SettingsPath(), cfg.Logger)
	localPrompts := prompts.NewLocalStore(cfg.Home.PromptsPath(), cfg.Logger)
	remotePrompts := prompts.NewRemoteStore(s.storeClient, c.Store.PromptCollection, cfg.Logger)
	resolver := prompts.NewResolver(localPrompts, remotePrompts, cfg.Logger)

	s.historyLog = history.NewLog(history.Config{
		Path:   cfg.Home.HistoryPath(),
		Logger: cfg.Logger,
	})

	s.gate = dedup.NewGate(dedup.Config{
		Window:        c.Dedup.Window(),
		SweepInterval: c.Dedup.SweepInterval(),
		Logger:        cfg.Logger,
	})

	recorder := analysis.NewRecorder(analysis.RecorderConfig{
		Log:          s.historyLog,
		SnapshotsDir: cfg.Home.SnapshotsPath(),
		Store:        s.storeClient,
		Collection:   c.Store.HistoryCollection,
		Logger:       cfg.Logger,
	})

	s.analysisSvc = analysis.NewService(analysis.ServiceConfig{
		Settings: settingsStore,
		Gate:     s.gate,
		Resolver: resolver,
		Vision:   vision.NewClient(visionConfig(c)),
		Recorder: recorder,
		Logger:   cfg.Logger,
	})

	// Swap the vision client when the config file changes
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		s.analysisSvc.UpdateVision(vision.NewClient(visionConfig(c)))
		cfg.Logger.Info("vision client reloaded from config", "model", c.Vision.Model)
	})

	s.services = &svcctx.Services{
		Analysis:      s.analysisSvc,
		SettingsStore: settingsStore,
		Resolver:      resolver,
		History:       s.historyLog,
		StoreClient:   s.storeClient,
		Logger:        cfg.Logger,
		Home:          cfg.Home,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{HistoryCollection: c.Store.HistoryCollection}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      withCORS(s.withServices(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func visionConfig(c *config.Config) vision.Config {
	return vision.Config{
		APIKey:     config.ResolveEnvVars(c.Vision.APIKey),
		Model:      c.Vision.Model,
		MaxTokens:  c.Vision.MaxTokens,
		MaxRetries: c.Vision.MaxRetries,
		Timeout:    c.Vision.Timeout(),
		BaseURL:    c.Vision.BaseURL,
	}
}

// Start starts the server and its background workers.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	// The log writer runs until Stop so the shutdown drain can still flush
	// in-flight persistence after ctx is cancelled.
	s.historyLog.Start(context.Background())
	s.gate.Start(ctx)

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

// shutdown stops the HTTP server, waits for in-flight persistence, and stops
// the background workers.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.logger.Info("draining persistence queue")
	s.analysisSvc.Drain()

	s.gate.Stop()
	s.historyLog.Stop()

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

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wrapped HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.analysisSvc == nil || s.historyLog == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// withCORS applies permissive CORS headers. The bookmarklet posts from
// arbitrary origins.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
