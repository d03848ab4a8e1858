// Package web provides the HTTP server and handlers for the fleet console.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2/store/memstore"

	"github.com/JonMunkholm/fleetdesk/internal/config"
	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/settings"
	mw "github.com/JonMunkholm/fleetdesk/internal/web/middleware"
)

// rateLimitKeys bounds the number of clients tracked by the rate limiter.
const rateLimitKeys = 65536

// Server is the HTTP server for the fleet console.
type Server struct {
	service  *core.Service
	settings settings.Store
	cfg      *config.Config
	metrics  *metrics
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, store settings.Store, cfg *config.Config) (*Server, error) {
	s := &Server{
		service:  service,
		settings: store,
		cfg:      cfg,
		metrics:  newMetrics(),
		router:   chi.NewRouter(),
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() error {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(withClient)

	if s.cfg.Rate.Enabled {
		limit, err := s.rateLimit("all", s.cfg.Rate.RequestsPerMinute)
		if err != nil {
			return err
		}
		s.router.Use(limit)
	}
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.handler())

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Get("/datasets/{key}", s.handleDatasetPage)

	exportLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled && s.cfg.Rate.ExportLimit > 0 {
		limit, err := s.rateLimit("export", s.cfg.Rate.ExportLimit)
		if err != nil {
			return err
		}
		exportLimit = limit
	}

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.cfg.Security))

		// Dataset metadata
		r.Get("/datasets", s.handleListDatasets)
		r.Get("/datasets/{key}/columns", s.handleColumns)
		r.Get("/datasets/{key}/distinct/{column}", s.handleDistinct)

		// Filtered rows
		r.Post("/datasets/{key}/query", s.handleQuery)
		r.Get("/datasets/{key}/rows", s.handleRows)
		r.With(exportLimit).Get("/datasets/{key}/export", s.handleExport)

		// Column settings
		r.Get("/column-settings/{view}", s.handleGetColumnSettings)
		r.Put("/column-settings/{view}", s.handlePutColumnSettings)
		r.Delete("/column-settings/{view}", s.handleDeleteColumnSettings)
	})

	return nil
}

func (s *Server) rateLimit(scope string, perMinute int) (func(http.Handler) http.Handler, error) {
	store, err := memstore.NewCtx(rateLimitKeys)
	if err != nil {
		return nil, fmt.Errorf("rate limit store: %w", err)
	}
	limit, err := mw.RateLimit(store, scope, perMinute)
	if err != nil {
		return nil, fmt.Errorf("rate limiter %s: %w", scope, err)
	}
	return limit, nil
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
