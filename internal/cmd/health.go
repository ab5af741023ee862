package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/config"
	"github.com/devfolio/devfolio/internal/observability"
)

var healthProbeBackends bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the binary can start: version info, logger and configuration.
With --backends the configured limiter store is opened and pinged too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.CLILogger
		if logger == nil {
			return withExitCode(foundry.ExitConfigInvalid, errors.New("logger not initialized"))
		}
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			logger.Error("FAIL: version information missing")
			return withExitCode(foundry.ExitConfigInvalid, errors.New("version information missing"))
		}
		logger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		logger.Info("OK: version information available")

		cfg, err := loadConfig()
		if err != nil {
			logger.Error("FAIL: configuration invalid", zap.Error(err))
			return withExitCode(foundry.ExitConfigInvalid, err)
		}
		logger.Info("OK: configuration valid", zap.String("rate_limit_backend", cfg.RateLimit.Backend))

		if healthProbeBackends {
			if err := probeBackends(cmd.Context(), cfg); err != nil {
				logger.Error("FAIL: backend unreachable", zap.Error(err))
				return withExitCode(foundry.ExitExternalServiceUnavailable, err)
			}
			logger.Info("OK: backends reachable")
		}

		logger.Info("All health checks passed")
		return nil
	},
}

func probeBackends(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	deps, err := buildServiceDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close() // nolint:errcheck // best-effort cleanup

	if deps.store != nil {
		return deps.store.Ping(ctx)
	}
	return nil
}

func init() {
	healthCmd.Flags().BoolVar(&healthProbeBackends, "backends", false, "Also open and ping the configured stores")
	rootCmd.AddCommand(healthCmd)
}
