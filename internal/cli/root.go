package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviewpilot/internal/config"
	"github.com/reviewpilot/reviewpilot/internal/logging"
)

var (
	verbose   bool
	repoFlag  string
	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "reviewpilot",
		Short: "Triage and act on pull request review comments",
		Long: `Reviewpilot fetches PR review comments, classifies what each one is
asking for, suggests mechanical fixes where possible, and drives comment
threads to a decision: reply and fix, reply and dismiss, or skip.`,
		Example: `  reviewpilot comments list 42
  reviewpilot analyze 42 1001
  reviewpilot batch 42 --report
  reviewpilot decide 42 1001 --action dismiss`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVarP(&repoFlag, "repo", "r", "", "Repository as owner/repo (default: detect from git remote)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		return nil
	}

	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validityCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(bulkCloseCmd)
	rootCmd.AddCommand(configCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
