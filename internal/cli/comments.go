package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviewpilot/internal/provider"
	"github.com/reviewpilot/reviewpilot/internal/triage"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Fetch and inspect PR review comments",
}

var (
	commentAuthors    []string
	commentStatus     string
	commentTypes      []string
	commentKeywords   []string
	commentMinAgeDays int
	commentBotsOnly   bool
	contextBefore     int
	contextAfter      int
)

func init() {
	commentsListCmd.Flags().StringSliceVar(&commentAuthors, "author", nil, "Only comments by these logins")
	commentsListCmd.Flags().StringVar(&commentStatus, "status", "", "Only comments with this thread status (open, resolved, outdated)")
	commentsListCmd.Flags().StringSliceVar(&commentTypes, "type", nil, "Only these comment types (review_comment, issue_comment)")
	commentsListCmd.Flags().StringSliceVar(&commentKeywords, "keyword", nil, "Only comments containing any of these keywords")
	commentsListCmd.Flags().IntVar(&commentMinAgeDays, "min-age-days", 0, "Only comments older than this many days")
	commentsListCmd.Flags().BoolVar(&commentBotsOnly, "bots", false, "Only comments from known review bots")
	commentsContextCmd.Flags().IntVar(&contextBefore, "before", 0, "Lines of context before the commented line")
	commentsContextCmd.Flags().IntVar(&contextAfter, "after", 0, "Lines of context after the commented line")

	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsContextCmd)
}

var commentsListCmd = &cobra.Command{
	Use:   "list <pr>",
	Short: "List review comments on a PR",
	Example: `  reviewpilot comments list 42
  reviewpilot comments list 42 --status open --bots
  reviewpilot comments list 42 --keyword security --keyword crash`,
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

		filters := provider.Filters{
			Authors:    commentAuthors,
			Status:     provider.CommentStatus(commentStatus),
			Keywords:   commentKeywords,
			MinAgeDays: commentMinAgeDays,
		}
		for _, t := range commentTypes {
			filters.Types = append(filters.Types, provider.CommentType(t))
		}
		comments = filters.Apply(comments)
		if commentBotsOnly {
			kept := comments[:0]
			for _, c := range comments {
				if triage.IsBotAuthor(c.Author) || isConfiguredBot(c.Author) {
					kept = append(kept, c)
				}
			}
			comments = kept
		}

		if len(comments) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No comments match.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(comments))
		for _, c := range comments {
			location := "-"
			if c.FilePath != "" {
				location = fmt.Sprintf("%s:%d", c.FilePath, c.Line)
			}
			rows = append(rows, []string{
				c.ID,
				string(c.Type),
				string(c.Status),
				c.Author,
				location,
				truncateStr(c.Body, 60),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "TYPE", "STATUS", "AUTHOR", "LOCATION", "COMMENT").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		fmt.Fprintf(cmd.OutOrStdout(), "%d comments\n", len(comments))
		return nil
	},
}

func isConfiguredBot(login string) bool {
	if appConfig == nil {
		return false
	}
	for _, b := range appConfig.Triage.BotAuthors {
		if b == login {
			return true
		}
	}
	return false
}

var commentsContextCmd = &cobra.Command{
	Use:     "context <pr> <comment-id>",
	Short:   "Show the code around a comment's location",
	Example: `  reviewpilot comments context 42 1001 --before 5 --after 5`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := parsePRNumber(args[0])
		if err != nil {
			return err
		}
		host, err := currentHost()
		if err != nil {
			return err
		}

		comment, err := findComment(cmd.Context(), host, prNumber, args[1])
		if err != nil {
			return err
		}

		before, after := contextBefore, contextAfter
		if before <= 0 {
			before = appConfig.Triage.LinesBefore
		}
		if after <= 0 {
			after = appConfig.Triage.LinesAfter
		}

		snippet, err := host.GetSnippet(cmd.Context(), *comment, before, after)
		if err != nil {
			return fmt.Errorf("fetching snippet: %w", err)
		}

		labelStyle := lipgloss.NewStyle().Bold(true)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", labelStyle.Render("Comment:"), comment.ID, comment.Author)
		if comment.FilePath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s:%d\n", labelStyle.Render("Location:"), comment.FilePath, comment.Line)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n%s\n", comment.Body, snippet)
		return nil
	},
}
