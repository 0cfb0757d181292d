package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviewpilot/internal/provider"
	"github.com/reviewpilot/reviewpilot/internal/triage"
)

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output raw JSON")
	validityCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output raw JSON")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pr> <comment-id>",
	Short: "Classify a comment and suggest a fix",
	Long: `Analyze a review comment against the known pattern families
(unused imports, misplaced imports, duplicate imports, missing type hints,
missing docstrings) and, where the fix is mechanical, produce the corrected
line and a ready-to-post reply.`,
	Example: `  reviewpilot analyze 42 1001
  reviewpilot analyze 42 1001 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, snippet, err := fetchCommentContext(cmd, args)
		if err != nil {
			return err
		}

		analysis := triage.Analyze(comment.Body, snippet, comment.Line)

		if analyzeJSON {
			return printJSON(cmd, analysis)
		}

		labelStyle := lipgloss.NewStyle().Bold(true)
		out := cmd.OutOrStdout()
		pattern := string(analysis.Pattern)
		if pattern == "" {
			pattern = "none"
		}
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Pattern:"), pattern)
		fmt.Fprintf(out, "%s %s (%.2f)\n", labelStyle.Render("Status:"), analysis.Status, analysis.Confidence)
		fmt.Fprintf(out, "%s %v\n", labelStyle.Render("Auto-fixable:"), analysis.CanAutoFix)
		if analysis.Reasoning != "" {
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Reasoning:"), analysis.Reasoning)
		}
		if analysis.SuggestedFix != nil {
			fmt.Fprintf(out, "\n%s\n", labelStyle.Render("Suggested fix:"))
			fmt.Fprintf(out, "  - %s\n", analysis.SuggestedFix.Original)
			if analysis.SuggestedFix.Fixed != "" {
				fmt.Fprintf(out, "  + %s\n", analysis.SuggestedFix.Fixed)
			}
			fmt.Fprintf(out, "  %s\n", analysis.SuggestedFix.Explanation)
		}
		if analysis.ReplyTemplate != "" {
			fmt.Fprintf(out, "\n%s\n%s\n", labelStyle.Render("Reply template:"), analysis.ReplyTemplate)
		}
		return nil
	},
}

var validityCmd = &cobra.Command{
	Use:   "validity <pr> <comment-id>",
	Short: "Check whether a comment's concern still applies",
	Long: `Judge a comment against the current code using keyword heuristics:
null-check complaints against present null guards, error-handling complaints
against try/except blocks, type-hint complaints against annotations.`,
	Example: `  reviewpilot validity 42 1001`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, snippet, err := fetchCommentContext(cmd, args)
		if err != nil {
			return err
		}

		verdict := triage.AnalyzeValidity(comment.Body, snippet)

		if analyzeJSON {
			return printJSON(cmd, verdict)
		}

		labelStyle := lipgloss.NewStyle().Bold(true)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%.2f)\n", labelStyle.Render("Status:"), verdict.Status, verdict.Confidence)
		fmt.Fprintf(out, "%s %v\n", labelStyle.Render("Valid:"), verdict.IsValid)
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Reasoning:"), verdict.Reasoning)
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Suggested action:"), verdict.SuggestedAction)
		return nil
	},
}

// fetchCommentContext resolves the host, finds the comment, and fetches its
// code snippet with the configured context window.
func fetchCommentContext(cmd *cobra.Command, args []string) (*provider.Comment, string, error) {
	prNumber, err := parsePRNumber(args[0])
	if err != nil {
		return nil, "", err
	}
	host, err := currentHost()
	if err != nil {
		return nil, "", err
	}

	comment, err := findComment(cmd.Context(), host, prNumber, args[1])
	if err != nil {
		return nil, "", err
	}

	snippet, err := host.GetSnippet(cmd.Context(), *comment,
		appConfig.Triage.LinesBefore, appConfig.Triage.LinesAfter)
	if err != nil {
		return nil, "", fmt.Errorf("fetching snippet: %w", err)
	}
	return comment, snippet, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
