// Package server provides the web front of the clubsignup client.
//
// Every browser gets its own signup page (list, select, form and message
// area) held in a server-side session. Pages are rendered without scripting:
// delete buttons post to /unregister and the signup form posts to /signup.
//
// # Endpoints
//
//   - GET / - Loads the activities and renders the page
//   - POST /signup - Submits the signup form, then redirects to /
//   - POST /unregister?activity=&email= - Asks for confirmation, or with
//     confirm=yes unregisters the participant, then redirects to /
//   - GET /health - Simple health check, returns "ok"
//   - GET /metrics - Prometheus metrics
//   - GET /config - Returns current configuration as YAML, secrets redacted
//   - GET /diagnostics - Captured client log entries per component
//   - GET /api/status - Build and runtime properties
//
// # Example
//
//	srv, err := server.New(cfg, server.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/nomis52/clubsignup/buildinfo"
	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/config"
	"github.com/nomis52/clubsignup/logging"
	"github.com/nomis52/clubsignup/metrics"
	"github.com/nomis52/clubsignup/page"
	"github.com/nomis52/clubsignup/render"
	"github.com/nomis52/clubsignup/server/handlers"
	"github.com/nomis52/clubsignup/server/session"
	"github.com/nomis52/clubsignup/server/types"
)

const (
	defaultReadTimeout = 10 * time.Second
	// Page handlers wait on the backend, so allow more than a read.
	defaultWriteTimeout = 30 * time.Second

	unregisterPath = "/unregister"
)

// Server is the HTTP server for the clubsignup web front.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	backend   page.Backend
	collector *logging.LogCollector
	startedAt time.Time
	hostname  string

	registry    *metrics.ScrapeRegistry
	pageMetrics *page.Metrics
	loggerHook  logging.LoggerHook
	sessions    *session.Store
	csrfKey     []byte
	certLoader  *CertLoader
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the server's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithBackend replaces the HTTP activity client built from the config.
func WithBackend(backend page.Backend) Option {
	return func(s *Server) error {
		s.backend = backend
		return nil
	}
}

// WithLogCollector sets where client diagnostics are captured.
func WithLogCollector(collector *logging.LogCollector) Option {
	return func(s *Server) error {
		s.collector = collector
		return nil
	}
}

// New creates a Server from a loaded configuration.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		logger:    slog.Default(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.backend == nil {
		s.backend = activityclient.New(cfg.Backend.URL)
	}
	if s.collector == nil {
		s.collector = logging.NewLogCollector()
	}
	s.loggerHook = logging.NewCapturingLoggerHook(s.collector)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	s.hostname = hostname

	key, err := cfg.SessionKeyBytes()
	if err != nil {
		return nil, fmt.Errorf("decoding session key: %w", err)
	}
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session key: %w", err)
		}
		s.logger.Warn("no session key configured, generated one for this run")
	}
	s.csrfKey = key

	registry, err := metrics.NewScrapeRegistry(cfg.Monitoring.MetricsPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating metrics registry: %w", err)
	}
	s.registry = registry

	pageMetrics, err := page.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	s.pageMetrics = pageMetrics

	if cfg.Server.TLSEnabled() {
		loader, err := NewCertLoader(cfg.Server.TLSCert, cfg.Server.TLSKey, s.logger)
		if err != nil {
			return nil, err
		}
		s.certLoader = loader
	}

	s.sessions = session.NewStore(s.newPage,
		session.WithIdleTimeout(cfg.Server.SessionIdleTimeout),
		session.WithSecureCookie(s.secureCookies()),
		session.WithLogger(s.logger),
	)

	return s, nil
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Config returns the server's configuration.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// Diagnostics returns the captured client log entries per component.
func (s *Server) Diagnostics() map[string][]logging.LogEntry {
	return s.collector.All()
}

// Properties returns build and runtime metadata.
func (s *Server) Properties() types.ServerProperties {
	return types.ServerProperties{
		Build:      buildinfo.Get(),
		StartedAt:  s.startedAt,
		Hostname:   s.hostname,
		BackendURL: s.cfg.Backend.URL,
		Sessions:   s.sessions.Len(),
	}
}

// newPage builds the signup page of a new browser session.
func (s *Server) newPage(dialog page.Dialog) (*page.Page, error) {
	return page.New(s.backend,
		page.WithDialog(dialog),
		page.WithLogger(s.logger),
		page.WithLoggerHook(s.loggerHook),
		page.WithMetrics(s.pageMetrics),
		page.WithRenderOptions(render.WithDeleteAction(unregisterPath)),
	)
}

func (s *Server) secureCookies() bool {
	return !s.cfg.Server.InsecureCookies
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.HandleHealth)
	r.Method(http.MethodGet, "/metrics", s.registry.Handler())
	r.Method(http.MethodGet, "/config", handlers.NewConfigHandler(s, s.logger))
	r.Method(http.MethodGet, "/diagnostics", handlers.NewDiagnosticsHandler(s))
	r.Method(http.MethodGet, "/api/status", handlers.NewStatusHandler(s))

	r.Group(func(r chi.Router) {
		if !s.secureCookies() {
			r.Use(plaintextRequests)
		}
		r.Use(csrf.Protect(s.csrfKey,
			csrf.Secure(s.secureCookies()),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(handlers.HandleCSRFFailure)),
		))
		r.Use(s.sessions.Middleware)

		r.Method(http.MethodGet, "/", handlers.NewIndexHandler(s.logger))
		r.Method(http.MethodPost, "/signup", handlers.NewSignupHandler(s.logger))
		r.Method(http.MethodPost, unregisterPath, handlers.NewUnregisterHandler(s.logger))
	})

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
	if s.certLoader != nil {
		httpServer.TLSConfig = s.certLoader.TLSConfig()
	}

	go s.sweepSessions(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", s.cfg.Server.Addr,
			"backend", s.cfg.Backend.URL,
			"tls", s.certLoader != nil,
		)
		var err error
		if s.certLoader != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-errCh:
		s.sessions.Close()
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.sessions.Close()
		return err
	}
}

// sweepSessions drops idle sessions until ctx is done.
func (s *Server) sweepSessions(ctx context.Context) {
	interval := s.cfg.Server.SessionIdleTimeout / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sessions.Sweep()
		}
	}
}
