package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviewpilot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage reviewpilot configuration",
	Long:  `Show and modify reviewpilot configuration values.`,
}

var configJSONFlag bool

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if cfg == nil {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		}

		// Redact the token before display.
		redacted := *cfg
		if redacted.GitHub.Token != "" {
			redacted.GitHub.Token = "********"
		}

		var data []byte
		var err error
		if configJSONFlag {
			data, err = json.Marshal(redacted)
		} else {
			data, err = json.MarshalIndent(redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in the user config",
	Long: `Set a single value in the user-level config file, preserving the
rest of the document. Keys use dotted-path notation.`,
	Example: `  reviewpilot config set github.repo acme/rocket
  reviewpilot config set triage.lines_before 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		if err := config.Set(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
		return nil
	},
}
