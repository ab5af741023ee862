package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devfolio/devfolio/internal/output"
	"github.com/devfolio/devfolio/internal/store"
)

var (
	rateLimitListAll     bool
	rateLimitListPrefix  string
	rateLimitListExpired bool
)

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted rate limit windows",
	Long: `List the fixed windows held in the libsql store.

Only the libsql backend persists windows; memory windows live in the serve
process and redis windows are inspected with redis tooling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		now := time.Now()
		query := store.RateLimitQuery{
			All:         rateLimitListAll,
			Prefix:      strings.TrimSpace(rateLimitListPrefix),
			ExpiredOnly: rateLimitListExpired,
			Now:         now,
		}
		if query.Prefix == "" {
			query.All = true
		}

		records, err := db.ListRateLimits(cmd.Context(), query)
		if err != nil {
			return err
		}

		sink, err := resolveSink(cmd, "rate-limit.list", format)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatRateLimits(records, now)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(sink.writer, rendered)
		return err
	},
}

func init() {
	addOutputFlags(rateLimitListCmd)
	rateLimitListCmd.Flags().BoolVar(&rateLimitListAll, "all", false, "List all keys")
	rateLimitListCmd.Flags().StringVar(&rateLimitListPrefix, "prefix", "", "List keys with matching caller prefix, e.g. 203.0.113.7:")
	rateLimitListCmd.Flags().BoolVar(&rateLimitListExpired, "expired", false, "Only list windows that have already ended")
}
