// Package server exposes a small admin HTTP API over the trading bot. It
// replaces the original operator workflow of typing commands into the bot's
// terminal with authenticated endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/unusualtrade/hatbot/internal/server/handler"
	"github.com/unusualtrade/hatbot/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port      int
	AuthToken string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Status   *handler.StatusHandler
	Listings *handler.ListingsHandler
	Control  *handler.ControlHandler
}

// Server is the admin HTTP API server for the trading bot.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and wires up the logging and auth middleware.
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Bot state.
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	mux.HandleFunc("GET /api/listings", handlers.Listings.ListListings)

	// Manual triggers.
	mux.HandleFunc("POST /api/control/refresh", handlers.Control.TriggerRefresh)
	mux.HandleFunc("POST /api/control/recalculate", handlers.Control.TriggerRecalculate)
	mux.HandleFunc("POST /api/control/save", handlers.Control.TriggerSave)
	mux.HandleFunc("POST /api/control/read-inventory", handlers.Control.TriggerReadInventory)

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if AuthToken is empty).
	h = middleware.Auth(cfg.AuthToken)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
