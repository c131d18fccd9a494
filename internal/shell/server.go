// Copyright (c) 2026 Planora. All rights reserved.

/*
Package shell serves the client's UI state over a localhost HTTP surface.

# Architecture

The shell is the presentation boundary of the headless client: the rendering
front end asks it "what should I show for this navigation?" and receives
session snapshots, guard decisions, menu items, and calendar grids as JSON.
It holds no state of its own — every answer is derived from the session
store, the guard, and the API clients at request time.

Only this package and cmd/edt are allowed to import net/http server
primitives.
*/
package shell

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/planora/edt-client/internal/platform/config"
	"github.com/planora/edt-client/internal/platform/constants"
	"github.com/planora/edt-client/internal/platform/middleware"
)

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// NewServer constructs the chi router with the full middleware chain and
// registers the shell routes.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h *Handler) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.DefaultWriteTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/healthz", h.health)

	// # UI State API
	r.Mount("/", h.Routes())

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("shell starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
