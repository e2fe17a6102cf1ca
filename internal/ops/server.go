// Package ops serves health checks and Prometheus metrics next to the bot.
package ops

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/logger"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Server is the operational HTTP endpoint.
type Server struct {
	echo   *echo.Echo
	logger *logger.Logger
	checks map[string]Check
}

func New(log *logger.Logger, checks map[string]Check) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, logger: log.WithComponent("ops"), checks: checks}
	e.GET("/healthz", s.healthCheck)
	e.GET("/readyz", s.readinessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("ops server listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Infow("shutting down ops server")
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			s.logger.Warnw("readiness check failed", "check", name, "error", err)
			continue
		}
		results[name] = "ok"
	}

	ready := "ready"
	if status != http.StatusOK {
		ready = "not_ready"
	}
	return c.JSON(status, map[string]interface{}{
		"status": ready,
		"checks": results,
	})
}
