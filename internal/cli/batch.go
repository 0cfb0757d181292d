package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviewpilot/internal/store"
	"github.com/reviewpilot/reviewpilot/internal/triage"
)

var (
	batchJSON   bool
	batchReport bool
)

func init() {
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "Output raw JSON")
	batchCmd.Flags().BoolVar(&batchReport, "report", false, "Write a markdown report to the configured reports directory")
}

var batchCmd = &cobra.Command{
	Use:   "batch <pr>",
	Short: "Categorize and prioritize all comments on a PR",
	Long: `Run a lightweight pass over every comment: bucket each by subject
(security, bugs, performance, quality, other) and order the queue by
priority keywords. Per-comment validity analysis is skipped for speed; use
"analyze" or "validity" on individual comments for a real verdict.`,
	Example: `  reviewpilot batch 42
  reviewpilot batch 42 --report`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := parsePRNumber(args[0])
		if err != nil {
			return err
		}
		host, err := currentHost()
		if err != nil {
			return err
		}

		comments, err := host.ListComments(cmd.Context(), prNumber)
		if err != nil {
			return fmt.Errorf("listing comments: %w", err)
		}

		result := triage.BatchAnalyze(comments)

		if batchReport {
			s := store.New(appConfig.Reports.Dir)
			path, err := s.WriteReport(&store.Report{
				Repo:          host.Namespace(),
				PRNumber:      prNumber,
				GeneratedAt:   time.Now(),
				TotalComments: result.TotalComments,
				Result:        result,
			})
			if err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		}

		if batchJSON {
			return printJSON(cmd, result)
		}

		out := cmd.OutOrStdout()
		labelStyle := lipgloss.NewStyle().Bold(true)
		fmt.Fprintf(out, "%s %d\n", labelStyle.Render("Total comments:"), result.TotalComments)
		for _, category := range []triage.Category{
			triage.CategorySecurity, triage.CategoryBugs, triage.CategoryPerformance,
			triage.CategoryQuality, triage.CategoryOther,
		} {
			if n := result.Categories[category]; n > 0 {
				fmt.Fprintf(out, "  %s: %d\n", category, n)
			}
		}

		if len(result.Priorities) == 0 {
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(result.Priorities))
		for _, item := range result.Priorities {
			location := "-"
			if item.FilePath != "" {
				location = fmt.Sprintf("%s:%d", item.FilePath, item.LineNumber)
			}
			rows = append(rows, []string{
				string(item.Priority),
				string(item.Category),
				item.CommentID,
				item.Author,
				location,
				truncateStr(item.Preview, 50),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("PRIORITY", "CATEGORY", "ID", "AUTHOR", "LOCATION", "PREVIEW").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(out, t)
		return nil
	},
}
