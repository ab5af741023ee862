package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devfolio/devfolio/internal/output"
)

var contactListLimit int

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Inspect stored contact form submissions",
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent contact form submissions",
	Long:  "List submissions persisted when contact.persist is enabled, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		if contactListLimit <= 0 {
			return fmt.Errorf("--limit must be positive")
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

		messages, err := db.ListContactMessages(cmd.Context(), contactListLimit)
		if err != nil {
			return err
		}

		sink, err := resolveSink(cmd, "contact.list", format)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatContactMessages(messages)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(sink.writer, rendered)
		return err
	},
}

func init() {
	addOutputFlags(contactListCmd)
	contactListCmd.Flags().IntVar(&contactListLimit, "limit", 20, "Maximum submissions to list")
	contactCmd.AddCommand(contactListCmd)
	rootCmd.AddCommand(contactCmd)
}
