// Package server wires the HTTP transport to the execution engine: router,
// middleware, routes, and graceful shutdown. It is the composition root:
// the dispatcher, handlers, and middleware are assembled here so main.go
// stays minimal.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/code-sandbox/internal/config"
	"github.com/sakif/code-sandbox/internal/executor"
	"github.com/sakif/code-sandbox/internal/handler"
	"github.com/sakif/code-sandbox/internal/metrics"
	"github.com/sakif/code-sandbox/internal/middleware"
)

// Server represents the HTTP server and its dependencies. It owns the
// dispatcher and stops it during graceful shutdown so no execution is
// abandoned mid-flight.
type Server struct {
	router     *chi.Mux
	config     config.Config
	logger     *slog.Logger
	dispatcher *executor.Dispatcher
}

// New assembles the server around a backend executor (normally the Docker
// runner). The dispatcher wrapping it enforces the worker and queue bounds.
func New(cfg config.Config, logger *slog.Logger, backend executor.Executor) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		dispatcher: executor.NewDispatcher(backend, executor.DispatcherConfig{
			Workers:   cfg.Workers,
			QueueSize: cfg.QueueSize,
		}, logger),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures middleware and route handlers.
//
// POST /api/execute → run code, return the structured result
// GET  /healthz     → liveness probe
// GET  /metrics     → Prometheus metrics
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	executeHandler := handler.NewExecuteHandler(s.dispatcher, s.config.MaxCodeSize, s.config.MaxStdinSize, s.config.MaxTimeout, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/execute", executeHandler.HandleExecute)
	})
	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler())
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, stop
// the dispatcher.
func (s *Server) Start() error {
	defer s.dispatcher.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// WriteTimeout must exceed the hard execution ceiling or slow
		// sandboxed runs would be cut off mid-response.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.MaxTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("image", s.config.Image),
			slog.Int("workers", s.config.Workers),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests time to finish; executions are bounded
		// by MaxTimeout, so this always suffices.
		ctx, cancel := context.WithTimeout(context.Background(), s.config.MaxTimeout+15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
