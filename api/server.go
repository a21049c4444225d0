// Package api provides the HTTP REST API for docfox.
//
// This package exposes the retrieval pipeline via HTTP endpoints, enabling
// the chat frontend and automation pipelines to search, index, and read
// documentation.
//
// Endpoints:
//
//	POST /api/search           →  semantic search (single or multi query)
//	GET  /api/documents/{id}   →  full reassembled document
//	POST /api/index            →  index or re-index a document
//	POST /api/faq/search       →  fuzzy FAQ lookup
//	GET  /api/changelogs       →  known SDK slugs
//	GET  /api/changelogs/{sdk} →  SDK release notes
//	GET  /health               →  liveness probe
//	GET  /ready                →  readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints
//   - knowledge.go: search, document, and index endpoints
//   - faq.go: FAQ endpoint
//   - changelog.go: changelog endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docfox/docfox/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Indexing a large document embeds every chunk, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the docfox REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health    *HealthHandler
	knowledge *KnowledgeHandler
	faq       *FAQHandler
	changelog *ChangelogHandler
}

// ServerConfig carries the dependencies of the API surface.
type ServerConfig struct {
	Pool      *pgxpool.Pool
	Store     KnowledgeStore
	FAQ       FAQSearcher
	Changelog ChangelogFetcher
	Logger    log.Logger
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:       mux,
		logger:    cfg.Logger,
		health:    NewHealthHandler(cfg.Pool, cfg.Logger),
		knowledge: NewKnowledgeHandler(cfg.Store, cfg.Logger),
		faq:       NewFAQHandler(cfg.FAQ, cfg.Logger),
		changelog: NewChangelogHandler(cfg.Changelog, cfg.Logger),
	}

	s.health.RegisterRoutes(mux)
	s.knowledge.RegisterRoutes(mux)
	s.faq.RegisterRoutes(mux)
	s.changelog.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger))
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
