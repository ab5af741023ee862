package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/config"
	"github.com/devfolio/devfolio/internal/github"
	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/server"
	"github.com/devfolio/devfolio/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errors.New("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (route limits and log settings apply on restart)

On shutdown the server drains requests, stops the rate limit janitor, closes
the stores and flushes logs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		observability.InitServerLogger(config.AppName, cfg.Logging.Level, config.AppName)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port, config.AppName); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return fmt.Errorf("metrics initialization failed: %w", err)
			}
			metrics.SetServerStartTime(time.Now().Unix())
		}

		logger.Info("Initializing server",
			zap.String("service", config.AppName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", cfg.Metrics.Port),
			zap.String("rate_limit_backend", cfg.RateLimit.Backend))

		deps, err := buildServiceDeps(cmd.Context(), cfg)
		if err != nil {
			logger.Error("Failed to initialize dependencies", zap.Error(err))
			return err
		}

		// Health checks
		hm := handlers.InitHealthManager(versionInfo.Version)
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		if deps.store != nil {
			hm.RegisterChecker("store", handlers.CheckerFunc(deps.store.Ping))
		}
		if deps.redis != nil {
			hm.RegisterChecker("redis", handlers.CheckerFunc(func(ctx context.Context) error {
				return deps.redis.Ping(ctx).Err()
			}))
		}

		var contactSink handlers.ContactSink = handlers.LogSink{}
		if cfg.Contact.Persist {
			contactSink = handlers.StoreSink{Store: deps.store}
		}

		var activity github.ActivitySource
		if cfg.GitHub.Username != "" {
			client := github.NewClient(github.Options{
				BaseURL:           cfg.GitHub.BaseURL,
				Token:             cfg.GitHub.Token,
				Timeout:           cfg.GitHub.Timeout,
				RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
				Burst:             cfg.GitHub.Burst,
				BreakerFailures:   cfg.GitHub.BreakerFailures,
				BreakerTimeout:    cfg.GitHub.BreakerTimeout,
			})
			activity = github.NewCachedSource(client, cfg.GitHub.CacheTTL)
		} else {
			logger.Warn("GitHub username not configured, activity feed disabled")
		}

		srv := server.New(cfg, server.Deps{
			Limiter:     deps.limiter,
			Activity:    activity,
			ContactSink: contactSink,
			Health:      hm,
		})

		// Periodic sweep of expired windows
		janitorCtx, stopJanitor := context.WithCancel(context.Background())
		var janitorDone <-chan struct{}
		if cfg.RateLimit.Enabled && cfg.RateLimit.CleanupInterval > 0 {
			janitorDone = deps.limiter.StartJanitor(janitorCtx, cfg.RateLimit.CleanupInterval)
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		// Handler 2: Close stores
		signals.OnShutdown(func(ctx context.Context) error {
			if err := deps.Close(); err != nil {
				logger.Warn("Failed to close stores", zap.Error(err))
			}
			return nil
		})

		// Handler 3: Stop the janitor
		signals.OnShutdown(func(ctx context.Context) error {
			stopJanitor()
			if janitorDone != nil {
				select {
				case <-janitorDone:
				case <-ctx.Done():
				}
			}
			return nil
		})

		// Handler 4: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Register config reload handler (SIGHUP)
		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if errors.As(err, &notFound) {
					logger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				logger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return fmt.Errorf("config reload failed: %w", err)
			}

			if _, err := loadConfig(); err != nil {
				logger.Error("Reloaded config is invalid, keeping previous values", zap.Error(err))
				return fmt.Errorf("config reload failed: %w", err)
			}

			logger.Info("Configuration reloaded successfully",
				zap.String("file", viper.ConfigFileUsed()))
			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			stopJanitor()
			_ = deps.Close()
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
