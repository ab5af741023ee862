package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/devfolio/devfolio/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration serve would run with after merging defaults, the
config file and DEVFOLIO_* environment variables. Secrets are omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("output-format")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var payload []byte
		switch strings.ToLower(strings.TrimSpace(format)) {
		case string(output.FormatJSON):
			// yaml tags carry the secret exclusions, so render through yaml first.
			var generic map[string]any
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := yaml.Unmarshal(raw, &generic); err != nil {
				return err
			}
			payload, err = json.MarshalIndent(generic, "", "  ")
			if err != nil {
				return err
			}
			payload = append(payload, '\n')
		case "yaml", "yml", "":
			payload, err = yaml.Marshal(cfg)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported output format: %s", format)
		}

		_, err = cmd.OutOrStdout().Write(payload)
		return err
	},
}

func init() {
	configShowCmd.Flags().String("output-format", "yaml", "Output format: yaml|json")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
