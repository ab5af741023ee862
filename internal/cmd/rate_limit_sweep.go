package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rateLimitSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired rate limit windows",
	Long: `Remove every window whose reset time has passed from the configured
backend. serve runs the same sweep on rate_limit.cleanup_interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		deps, err := buildServiceDeps(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer deps.Close() // nolint:errcheck // best-effort cleanup

		start := time.Now()
		removed := deps.limiter.Cleanup(cmd.Context())
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired window(s) from %s backend in %s\n",
			removed, cfg.RateLimit.Backend, time.Since(start).Round(time.Millisecond))
		return err
	},
}

func init() {
	rateLimitSweepCmd.Flags().String("backend", "", "Override rate_limit.backend (memory|redis|libsql)")
	_ = viper.BindPFlag("rate_limit.backend", rateLimitSweepCmd.Flags().Lookup("backend"))
}
