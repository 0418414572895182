package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/config"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/telemetry"
	"github.com/clauseguard/compliance-engine-backend/internal/metrics"
	compliancesvc "github.com/clauseguard/compliance-engine-backend/internal/service/compliance"
)

// Server hosts the compliance HTTP API
type Server struct {
	config     *config.Config
	httpServer *http.Server
	handler    *Handler
	logger     *slog.Logger
}

// NewServer builds the HTTP server with routing and middleware
func NewServer(cfg *config.Config, logger *slog.Logger, service *compliancesvc.Service, registry *metrics.Registry) *Server {
	handler := NewHandler(logger, service)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/compliance/check", handler.handleCheckCompliance)
	mux.HandleFunc("POST /api/v1/compliance/quick-check", handler.handleQuickCheck)
	mux.HandleFunc("POST /api/v1/compliance/candidates", handler.handleMatchCandidates)
	mux.HandleFunc("GET /api/v1/frameworks", handler.handleListFrameworks)
	mux.HandleFunc("GET /healthz", handler.handleHealthz)
	mux.HandleFunc("GET /readyz", handler.handleReadyz)
	if cfg.Telemetry.PrometheusEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	mux.HandleFunc("/", handler.handleNotFound)

	middlewares := []Middleware{
		recoveryMiddleware(logger),
		requestIDMiddleware,
		tracingMiddleware(telemetry.Tracer("api.rest.server")),
		loggingMiddleware(logger),
		metricsMiddleware(registry),
	}
	if cfg.Security.RateLimit.RequestsPerSecond > 0 {
		limiter := newClientRateLimiter(
			cfg.Security.RateLimit.RequestsPerSecond,
			cfg.Security.RateLimit.BurstSize,
		)
		middlewares = append(middlewares, rateLimitMiddleware(limiter))
	}
	middlewares = append(middlewares, NewAuthMiddleware(cfg.Security).Middleware())

	// Apply in reverse so the first entry sees the request first
	var root http.Handler = mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		root = middlewares[i](root)
	}

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      root,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		handler: handler,
		logger:  logger,
	}
}

// Start serves requests until the context is canceled or a shutdown
// signal arrives, then drains connections gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
