// Package engine turns triage decisions into idempotent reply-and-resolve
// actions against a comment host. The failure model is forward-only: replies
// are not revocable, so a resolution failure after a successful reply is
// reported as partial success, never rolled back.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reviewpilot/reviewpilot/internal/provider"
)

// Action is a triage decision on a single comment.
type Action string

const (
	// ActionFix posts an acknowledgment and leaves the thread open.
	ActionFix Action = "fix"
	// ActionDismiss posts a reply and then resolves the thread.
	ActionDismiss Action = "dismiss"
	// ActionSkip takes no action at all.
	ActionSkip Action = "skip"
)

// Default reply messages when the caller supplies none.
const (
	defaultFixMessage     = "✅ Acknowledged - this will be addressed in the next update."
	defaultDismissMessage = "✅ Reviewed and confirmed - this is not an issue or has been addressed."
)

// Decision is an ephemeral instruction to act on one comment.
type Decision struct {
	CommentID string
	Action    Action
	// Message overrides the default reply text when non-empty.
	Message string
}

// Outcome reports what Execute did, including partial failures: a posted
// reply with a failed resolution surfaces both facts.
type Outcome struct {
	ActionTaken    Action `json:"action_taken"`
	CommentID      string `json:"comment_id"`
	ReplyPosted    bool   `json:"reply_posted"`
	ReplyID        string `json:"reply_id,omitempty"`
	ThreadResolved bool   `json:"thread_resolved"`
	Message        string `json:"message"`
}

// Execute runs the thread state machine for one decision.
//
// skip is a terminal no-op from any state. fix replies and leaves the thread
// open. dismiss replies and then requests resolution; both "resolved" and
// "already_resolved" count as success. A resolution failure after a
// successful reply yields a non-error Outcome carrying the sub-step that
// failed.
func Execute(ctx context.Context, host provider.CommentHost, prNumber int, d Decision) (*Outcome, error) {
	if d.Action == ActionSkip {
		return &Outcome{
			ActionTaken: ActionSkip,
			CommentID:   d.CommentID,
			Message:     "Skipped - no action taken",
		}, nil
	}

	message := d.Message
	if message == "" {
		switch d.Action {
		case ActionFix:
			message = defaultFixMessage
		case ActionDismiss:
			message = defaultDismissMessage
		default:
			return nil, fmt.Errorf("invalid action %q: must be fix, dismiss, or skip", d.Action)
		}
	} else if d.Action != ActionFix && d.Action != ActionDismiss {
		return nil, fmt.Errorf("invalid action %q: must be fix, dismiss, or skip", d.Action)
	}

	reply, err := host.PostReply(ctx, prNumber, d.CommentID, message)
	if err != nil {
		if errors.Is(err, provider.ErrCommentNotFound) {
			return nil, err
		}
		return &Outcome{
			ActionTaken: d.Action,
			CommentID:   d.CommentID,
			Message:     fmt.Sprintf("Error posting reply: %v", err),
		}, nil
	}

	outcome := &Outcome{
		ActionTaken: d.Action,
		CommentID:   d.CommentID,
		ReplyPosted: true,
		ReplyID:     reply.ID,
		Message:     "Success",
	}

	if d.Action != ActionDismiss {
		return outcome, nil
	}

	res, err := host.RequestResolution(ctx, prNumber, d.CommentID)
	if err != nil {
		// Forward-only: the reply stands. Report exactly which step failed.
		outcome.Message = fmt.Sprintf("Reply posted but failed to resolve thread: %v", err)
		return outcome, nil
	}

	outcome.ThreadResolved = res.IsResolved
	slog.Debug("thread resolution completed",
		"commentID", d.CommentID, "threadID", res.ThreadID, "status", res.Status)
	return outcome, nil
}

// BulkItem is the per-comment record of a bulk close run.
type BulkItem struct {
	CommentID      string `json:"comment_id"`
	Success        bool   `json:"success"`
	ReplyPosted    bool   `json:"reply_posted"`
	ThreadResolved bool   `json:"thread_resolved"`
	Error          string `json:"error,omitempty"`
}

// BulkResult aggregates a bulk close run.
type BulkResult struct {
	TotalComments int        `json:"total_comments"`
	Processed     int        `json:"processed"`
	Succeeded     int        `json:"succeeded"`
	Failed        int        `json:"failed"`
	Results       []BulkItem `json:"results"`
}

// BulkClose posts message to every comment and optionally resolves each
// thread. Items are processed sequentially; one item's failure never aborts
// the rest. A posted reply with a failed resolution still counts as a
// success, with the resolution error recorded on the item.
func BulkClose(ctx context.Context, host provider.CommentHost, prNumber int, comments []provider.Comment, message string, resolveThreads bool) *BulkResult {
	result := &BulkResult{
		TotalComments: len(comments),
		Results:       make([]BulkItem, 0, len(comments)),
	}

	if message == "" {
		message = defaultDismissMessage
	}

	for _, c := range comments {
		item := BulkItem{CommentID: c.ID}

		if _, err := host.PostReply(ctx, prNumber, c.ID, message); err != nil {
			item.Error = err.Error()
			result.Failed++
			result.Results = append(result.Results, item)
			continue
		}
		item.ReplyPosted = true

		if resolveThreads {
			res, err := host.RequestResolution(ctx, prNumber, c.ID)
			if err != nil {
				item.Error = fmt.Sprintf("reply posted but resolution failed: %v", err)
			} else {
				item.ThreadResolved = res.IsResolved
			}
		}

		item.Success = true
		result.Succeeded++
		result.Results = append(result.Results, item)
	}

	result.Processed = len(result.Results)
	return result
}
