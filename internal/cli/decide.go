package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviewpilot/internal/engine"
	"github.com/reviewpilot/reviewpilot/internal/provider"
	"github.com/reviewpilot/reviewpilot/internal/triage"
)

var (
	decideAction  string
	decideMessage string
	decideJSON    bool

	bulkMessage string
	bulkResolve bool
	bulkAuthors []string
)

func init() {
	decideCmd.Flags().StringVarP(&decideAction, "action", "a", "", "Decision to apply (fix, dismiss, skip); omit for interactive mode")
	decideCmd.Flags().StringVarP(&decideMessage, "message", "m", "", "Reply text overriding the default for the action")
	decideCmd.Flags().BoolVar(&decideJSON, "json", false, "Output the outcome as JSON")

	bulkCloseCmd.Flags().StringVarP(&bulkMessage, "message", "m", "", "Reply text overriding the default dismissal")
	bulkCloseCmd.Flags().BoolVar(&bulkResolve, "resolve", true, "Resolve each thread after replying")
	bulkCloseCmd.Flags().StringSliceVar(&bulkAuthors, "author", nil, "Only close comments by these logins")
}

var decideCmd = &cobra.Command{
	Use:   "decide <pr> [comment-id]",
	Short: "Apply a decision to a comment thread",
	Long: `Drive a comment thread to a decision. "fix" replies that the issue
will be addressed and leaves the thread open. "dismiss" replies and resolves
the thread. "skip" does nothing.

With a comment ID and --action, applies the decision directly. Without
--action (or without a comment ID), walks the open comments that still need
a human call and prompts for each.`,
	Example: `  reviewpilot decide 42 1001 --action dismiss
  reviewpilot decide 42 1001 -a fix -m "Good catch, fixing in the next push."
  reviewpilot decide 42`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := parsePRNumber(args[0])
		if err != nil {
			return err
		}
		host, err := currentHost()
		if err != nil {
			return err
		}

		if len(args) == 2 && decideAction != "" {
			outcome, err := engine.Execute(cmd.Context(), host, prNumber, engine.Decision{
				CommentID: args[1],
				Action:    engine.Action(decideAction),
				Message:   decideMessage,
			})
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome)
		}

		return decideInteractive(cmd, host, prNumber, args)
	},
}

// needsDecision reports whether an analysis verdict is too weak to act on
// automatically, so a human should look at the comment.
func needsDecision(a triage.Analysis) bool {
	switch a.Status {
	case triage.StatusUncertain:
		return true
	case triage.StatusNeedsFix:
		return a.Confidence < 0.7
	case triage.StatusAlreadyFixed:
		return a.Confidence < 0.6
	}
	return false
}

func decideInteractive(cmd *cobra.Command, host provider.CommentHost, prNumber int, args []string) error {
	comments, err := host.ListComments(cmd.Context(), prNumber)
	if err != nil {
		return fmt.Errorf("listing comments: %w", err)
	}

	// narrow to the requested comment, or to open comments needing a call
	var queue []provider.Comment
	for _, c := range comments {
		if len(args) == 2 {
			if c.ID == args[1] {
				queue = append(queue, c)
			}
			continue
		}
		if c.Status != provider.StatusOpen {
			continue
		}
		snippet, err := host.GetSnippet(cmd.Context(), c, appConfig.Triage.LinesBefore, appConfig.Triage.LinesAfter)
		if err != nil {
			snippet = c.DiffHunk
		}
		if needsDecision(triage.Analyze(c.Body, snippet, c.Line)) {
			queue = append(queue, c)
		}
	}
	if len(args) == 2 && len(queue) == 0 {
		return fmt.Errorf("comment %s in PR %d: %w", args[1], prNumber, provider.ErrCommentNotFound)
	}
	if len(queue) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No comments need a decision.")
		return nil
	}

	labelStyle := lipgloss.NewStyle().Bold(true)
	for _, c := range queue {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s (%s)\n", labelStyle.Render("Comment:"), c.ID, c.Author)
		if c.FilePath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s:%d\n", labelStyle.Render("Location:"), c.FilePath, c.Line)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", c.Body)

		var action engine.Action
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[engine.Action]().
					Title(fmt.Sprintf("Decision for comment %s", c.ID)).
					Options(
						huh.NewOption("Fix — reply, leave thread open", engine.ActionFix),
						huh.NewOption("Dismiss — reply, resolve thread", engine.ActionDismiss),
						huh.NewOption("Skip — no action", engine.ActionSkip),
					).
					Value(&action),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("decision cancelled: %w", err)
		}

		outcome, err := engine.Execute(cmd.Context(), host, prNumber, engine.Decision{
			CommentID: c.ID,
			Action:    action,
			Message:   decideMessage,
		})
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			continue
		}
		if err := printOutcome(cmd, outcome); err != nil {
			return err
		}
	}
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *engine.Outcome) error {
	if decideJSON {
		return printJSON(cmd, outcome)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s", outcome.ActionTaken, outcome.Message)
	if outcome.ReplyPosted {
		fmt.Fprintf(out, " (reply %s", outcome.ReplyID)
		if outcome.ThreadResolved {
			fmt.Fprint(out, ", thread resolved")
		}
		fmt.Fprint(out, ")")
	}
	fmt.Fprintln(out)
	return nil
}

var bulkCloseCmd = &cobra.Command{
	Use:   "bulk-close <pr>",
	Short: "Reply to and resolve every open comment on a PR",
	Long: `Close out a PR's remaining open comments in one pass: post the same
dismissal reply to each and resolve its thread. Failures on one comment do
not stop the rest.`,
	Example: `  reviewpilot bulk-close 42
  reviewpilot bulk-close 42 --author coderabbitai[bot] -m "✅ Addressed in the latest push."`,
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
			Authors: bulkAuthors,
			Status:  provider.StatusOpen,
		}
		comments = filters.Apply(comments)
		if len(comments) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No open comments to close.")
			return nil
		}

		result := engine.BulkClose(cmd.Context(), host, prNumber, comments, bulkMessage, bulkResolve)

		out := cmd.OutOrStdout()
		for _, item := range result.Results {
			status := "ok"
			if !item.Success {
				status = "failed"
			}
			fmt.Fprintf(out, "  %s: %s", item.CommentID, status)
			if item.Error != "" {
				fmt.Fprintf(out, " (%s)", item.Error)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Closed %d/%d comments\n", result.Succeeded, result.TotalComments)
		return nil
	},
}
