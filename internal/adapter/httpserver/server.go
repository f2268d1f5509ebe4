// Package httpserver is the HTTP sidecar next to the Discord gateway. It
// serves health probes, build info, Prometheus metrics, a read-only JSON
// API over the vouch ledger, and the overlay websocket endpoint.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quikeats/Vouchy/internal/adapter/websocket"
	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/platform/config"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config

	ledger domain.Ledger
	hub    *websocket.Hub

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, ledger domain.Ledger, hub *websocket.Hub, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		ledger:       ledger,
		hub:          hub,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
