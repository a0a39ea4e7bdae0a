package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/handler"
	"github.com/ohada-ledger/internal/api_gateway/service"
	"github.com/ohada-ledger/internal/config"
)

// Services are the backends the HTTP API delegates to. Archive is optional.
type Services struct {
	Accounts    service.AccountService
	Balances    service.BalanceService
	Journal     service.JournalService
	Reports     service.ReportService
	Submissions service.SubmissionService
	Archive     service.ArchiveService

	// Probes are dependency checks served by /ready, keyed by dependency name
	Probes map[string]Probe
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger // For structured logging
	httpServer      *http.Server // Underlying HTTP server
	httpRouter      *gin.Engine  // Gin router instance
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svc Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	handlers := Handlers{
		Accounts: handler.NewAccountHandler(log, svc.Accounts, svc.Balances, svc.Journal),
		Classes:  handler.NewClassHandler(log, svc.Accounts),
		Journal:  handler.NewJournalHandler(log, svc.Journal, svc.Submissions),
		Reports:  handler.NewReportHandler(log, svc.Reports),
	}
	if svc.Archive != nil {
		handlers.Archive = handler.NewArchiveHandler(log, svc.Archive)
	}

	handlers.Probes = svc.Probes

	setupRouter(log, httpRouter, handlers)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler exposes the router, for tests driving the full middleware chain
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server within the shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
