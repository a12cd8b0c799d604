package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/config"
	"github.com/yshengliao/turbohttp/server"
	"github.com/yshengliao/turbohttp/view"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long:  "Run the demo application until interrupted, then shut down gracefully",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if address != "" {
				cfg.Server.Address = address
			}

			logger, err := cfg.Logger.Build()
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "listen address (overrides config)")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	a, err := buildApp(cfg, logger, reg)
	if err != nil {
		return err
	}

	if engine, ok := a.Renderer().(*view.Engine); ok && cfg.Templates.Watch {
		if err := engine.Watch(ctx); err != nil {
			logger.Warn("Template watching disabled", zap.Error(err))
		}
	}

	srv := server.New(a, cfg, server.WithGatherer(reg))
	if engine, ok := a.Renderer().(*view.Engine); ok {
		srv.Health().Register("templates", templatesHealthCheck(engine.Dir()))
	}
	srv.OnShutdown(func(context.Context) error {
		logger.Info("Flushing logs")
		_ = logger.Sync()
		return nil
	})

	return srv.Run(ctx)
}

func templatesHealthCheck(dir string) server.HealthCheck {
	return func(context.Context) server.HealthCheckResult {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			return server.HealthCheckResult{Status: server.HealthStatusDegraded, Message: err.Error()}
		case !info.IsDir():
			return server.HealthCheckResult{Status: server.HealthStatusDegraded, Message: dir + " is not a directory"}
		}
		return server.HealthCheckResult{Status: server.HealthStatusHealthy}
	}
}
