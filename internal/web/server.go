// Package web provides the HTTP service that accepts CSV files and zip
// bundles and loads them through the import engine.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csv2db/internal/config"
	"github.com/JonMunkholm/csv2db/internal/core"
	mw "github.com/JonMunkholm/csv2db/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Importer is the engine surface the handlers need.
type Importer interface {
	Load(ctx context.Context, path string) ([]core.LoadResult, error)
	TableInfo(ctx context.Context, table string) (core.TableSchema, error)
}

// Server is the HTTP server for the import service.
type Server struct {
	cfg      *config.Config
	importer Importer
	limiter  *core.ImportLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, importer Importer, limiter *core.ImportLimiter) *Server {
	s := &Server{
		cfg:      cfg,
		importer: importer,
		limiter:  limiter,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.cfg.Security.APIKeys))

		r.Post("/imports", s.handleImport)
		r.Get("/tables/{table}", s.handleTableInfo)
	})
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for running imports.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
