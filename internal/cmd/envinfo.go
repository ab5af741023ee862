package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/config"
	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/ratelimit"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information. Secrets are reported as set or unset only.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		version := crucible.GetVersion()

		log.Info("=== devfolio Environment Information ===")
		log.Info("")

		log.Info("Application:")
		log.Info("  Name:       " + config.AppName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("")

		log.Info("SSOT:")
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS/ARCH:  "+runtime.GOOS+"/"+runtime.GOARCH, zap.String("goos", runtime.GOOS), zap.String("goarch", runtime.GOARCH))
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			configFile = config.DefaultConfigPath() + " (not found)"
		}

		log.Info("Server:")
		log.Info("  Address:        " + fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info("  Admin Endpoint: " + setOrUnset(cfg.Server.AdminToken))
		log.Info("  Config File:    "+configFile, zap.String("config_file", configFile))
		log.Info("")

		log.Info("Rate Limiting:")
		log.Info(fmt.Sprintf("  Enabled:        %t", cfg.RateLimit.Enabled), zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled))
		log.Info("  Backend:        "+cfg.RateLimit.Backend, zap.String("backend", cfg.RateLimit.Backend))
		log.Info("  Cleanup:        " + cfg.RateLimit.CleanupInterval.String())
		for _, preset := range []ratelimit.Config{ratelimit.ContactForm, ratelimit.GitHubActivity} {
			route := cfg.RateLimit.Route(preset)
			log.Info(fmt.Sprintf("  %-15s %d per %s", route.Identifier+":", route.MaxRequests, route.Window))
		}
		switch cfg.RateLimit.Backend {
		case config.BackendRedis:
			log.Info("  Redis Addrs:    " + strings.Join(cfg.Redis.Addrs, ","))
		case config.BackendLibsql:
			log.Info("  Store:          " + storeLocation(cfg.Store))
		}
		log.Info("")

		log.Info("GitHub:")
		username := cfg.GitHub.Username
		if username == "" {
			username = "(unset, activity feed disabled)"
		}
		log.Info("  Username:       " + username)
		log.Info("  Token:          " + setOrUnset(cfg.GitHub.Token))
		log.Info("  Cache TTL:      " + cfg.GitHub.CacheTTL.String())
		log.Info("")

		log.Info("Contact:")
		log.Info(fmt.Sprintf("  Persist:        %t", cfg.Contact.Persist))
		if cfg.Contact.Persist {
			log.Info("  Store:          " + storeLocation(cfg.Store))
		}
		log.Info("")

		log.Info("=== End Environment Information ===")
	},
}

func setOrUnset(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return "(not set)"
	}
	return "(set)"
}

func storeLocation(cfg config.StoreConfig) string {
	if strings.TrimSpace(cfg.URL) != "" {
		return cfg.URL
	}
	return cfg.Path
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
