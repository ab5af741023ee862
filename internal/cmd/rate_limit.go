package cmd

import "github.com/spf13/cobra"

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect and manage rate limit windows",
}

func init() {
	rateLimitCmd.AddCommand(rateLimitListCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rateLimitCmd.AddCommand(rateLimitSweepCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
