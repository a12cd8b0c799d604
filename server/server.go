// Package server runs an App behind an echo listener with an optional admin
// listener and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/yshengliao/turbohttp/app"
	"github.com/yshengliao/turbohttp/config"
)

// ShutdownHook is run during graceful shutdown, before the listeners close
type ShutdownHook func(ctx context.Context) error

// Server owns the public listener and, when enabled, the admin listener
type Server struct {
	app      *app.App
	config   *config.Config
	logger   *zap.Logger
	e        *echo.Echo
	admin    *http.Server
	gatherer prometheus.Gatherer
	health   *HealthChecker

	mu            sync.RWMutex
	shutdownHooks []ShutdownHook
}

// Option configures a Server
type Option func(*Server)

// WithGatherer sets the registry exposed on the admin /metrics endpoint
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// New builds a server for a. The config's server and admin sections are
// used; a nil config means config.DefaultConfig().
func New(a *app.App, cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		app:      a,
		config:   cfg,
		logger:   a.Logger(),
		gatherer: prometheus.DefaultGatherer,
		health:   NewHealthChecker(5 * time.Second),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.health.Register("routes", RoutesHealthCheck(func() int { return len(a.Routes()) }))

	s.e = s.newEcho()
	if cfg.Admin.Enabled {
		s.admin = &http.Server{
			Addr:              cfg.Admin.Address,
			Handler:           AdminHandler(a, s.gatherer, s.health),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

func (s *Server) newEcho() *echo.Echo {
	sc := s.config.Server

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.IdleTimeout = sc.IdleTimeout

	if sc.Recovery {
		e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				s.logger.Error("Recovered from panic",
					zap.Error(err),
					zap.String("path", c.Request().URL.Path),
					zap.ByteString("stack", stack))
				return err
			},
		}))
	}
	if sc.BodyLimit != "" {
		e.Use(echomw.BodyLimit(sc.BodyLimit))
	}
	if sc.GZip {
		e.Use(echomw.Gzip())
	}

	e.Any("/*", echo.WrapHandler(s.app))
	return e
}

// Health returns the checker behind the admin /healthz endpoint
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler returns the public handler with transport middleware applied
func (s *Server) Handler() http.Handler {
	return s.e
}

// OnShutdown registers a hook run during Shutdown
func (s *Server) OnShutdown(hook ShutdownHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownHooks = append(s.shutdownHooks, hook)
}

// Start serves until the listener is closed. It returns nil after a
// graceful Shutdown.
func (s *Server) Start() error {
	if s.admin != nil {
		go func() {
			s.logger.Info("Starting admin server", zap.String("address", s.admin.Addr))
			if err := s.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Admin server failed", zap.Error(err))
			}
		}()
	}

	address := s.config.Server.Address
	s.logger.Info("Starting server",
		zap.String("address", address),
		zap.Bool("h2c", s.config.Server.H2C))

	var err error
	if s.config.Server.H2C {
		err = s.e.StartH2CServer(address, &http2.Server{
			IdleTimeout: s.config.Server.IdleTimeout,
		})
	} else {
		err = s.e.Start(address)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Run starts the server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown runs the shutdown hooks in parallel, then closes the listeners.
// Without a deadline on ctx the configured shutdown timeout applies.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Starting graceful shutdown")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.config.Server.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()
	}

	var shutdownErr error
	if err := s.runShutdownHooks(ctx); err != nil {
		s.logger.Error("Error running shutdown hooks", zap.Error(err))
		shutdownErr = err
	}

	if s.admin != nil {
		if err := s.admin.Shutdown(ctx); err != nil {
			s.logger.Error("Error shutting down admin server", zap.Error(err))
		}
	}

	s.logger.Info("Shutting down HTTP server")
	if err := s.e.Shutdown(ctx); err != nil {
		s.logger.Error("Error shutting down HTTP server", zap.Error(err))
		return err
	}

	s.logger.Info("Graceful shutdown completed")
	return shutdownErr
}

func (s *Server) runShutdownHooks(ctx context.Context) error {
	s.mu.RLock()
	hooks := make([]ShutdownHook, len(s.shutdownHooks))
	copy(hooks, s.shutdownHooks)
	s.mu.RUnlock()

	if len(hooks) == 0 {
		return nil
	}
	s.logger.Info("Running shutdown hooks", zap.Int("count", len(hooks)))

	var wg sync.WaitGroup
	errCh := make(chan error, len(hooks))
	for i, hook := range hooks {
		wg.Add(1)
		go func(idx int, h ShutdownHook) {
			defer wg.Done()
			s.logger.Debug("Running shutdown hook", zap.Int("index", idx))
			if err := h(ctx); err != nil {
				errCh <- fmt.Errorf("shutdown hook %d failed: %w", idx, err)
			}
		}(i, hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown hooks timed out: %w", ctx.Err())
	}

	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
