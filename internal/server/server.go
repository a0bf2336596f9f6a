// Package server exposes the analysis engine over HTTP. Each session owns a
// coordinator; batches posted to a session are ingested and analyzed, and the
// resulting snapshots can be fetched or, on finalize, persisted.
package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/store"
)

// Server is the session API server. The store is optional; when nil the
// server runs fully in memory and finalized snapshots are not persisted.
type Server struct {
	echo     *echo.Echo
	cfg      *model.Config
	registry *sessionRegistry
	store    store.Store
	logger   *log.Logger
}

// New builds a server with its routes registered. A nil logger disables
// logging.
func New(cfg *model.Config, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		cfg:      cfg,
		registry: newSessionRegistry(cfg),
		store:    st,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions", s.handleListSessions)
	api.GET("/sessions/:id", s.handleGetSession)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.POST("/sessions/:id/batches", s.handleIngestBatch)
	api.GET("/sessions/:id/snapshot", s.handleGetSnapshot)
	api.POST("/sessions/:id/finalize", s.handleFinalize)
}

// Start serves until the context is cancelled or an interrupt arrives, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.cfg.Server.Addr)
		if err := s.echo.Start(s.cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shutdown server", "err", err)
		return err
	}
	return nil
}
