package provider

import (
	"context"
	"errors"
	"time"
)

// ErrCommentNotFound is returned when a comment ID does not exist in the
// given pull request.
var ErrCommentNotFound = errors.New("comment not found")

// ErrThreadNotFound is returned when a comment belongs to no resolvable
// review thread (e.g. a general issue comment).
var ErrThreadNotFound = errors.New("no review thread found for comment")

// CommentType distinguishes inline review comments from general PR comments.
type CommentType string

const (
	TypeReviewComment CommentType = "review_comment"
	TypeIssueComment  CommentType = "issue_comment"
)

// CommentStatus is the lifecycle state of a comment's thread.
type CommentStatus string

const (
	StatusOpen     CommentStatus = "open"
	StatusResolved CommentStatus = "resolved"
	StatusOutdated CommentStatus = "outdated"
)

// Comment is a review or issue comment fetched from the host.
type Comment struct {
	// ID is the host-assigned comment identifier.
	ID string
	// Type is review_comment (inline) or issue_comment (general).
	Type CommentType
	// Author is the login of the comment author.
	Author string
	// Body is the comment text.
	Body string
	// CreatedAt is when the comment was posted.
	CreatedAt time.Time
	// UpdatedAt is when the comment was last edited, if ever.
	UpdatedAt time.Time
	// Status is the thread lifecycle state (open for issue comments).
	Status CommentStatus
	// FilePath is set for inline comments only.
	FilePath string
	// Line is the commented line number (0 for general comments).
	Line int
	// DiffHunk is the diff excerpt the comment is anchored to, if any.
	DiffHunk string
	// HTMLURL is the web URL of the comment.
	HTMLURL string
	// PRNumber is the pull request the comment belongs to.
	PRNumber int
	// Repo is the owner/name namespace the comment was fetched from.
	Repo string
}

// Reply is the result of posting a reply to a comment.
type Reply struct {
	ID   string
	URL  string
	Body string
	// Type records how the reply was delivered: a threaded review reply or
	// a general issue comment referencing the original.
	Type CommentType
}

// ResolutionStatus reports how a resolution request concluded.
type ResolutionStatus string

const (
	// ResolutionResolved means this request transitioned the thread to resolved.
	ResolutionResolved ResolutionStatus = "resolved"
	// ResolutionAlreadyResolved means the thread was resolved before the
	// request; callers must treat this as success.
	ResolutionAlreadyResolved ResolutionStatus = "already_resolved"
)

// Resolution is the outcome of a thread resolution request.
type Resolution struct {
	CommentID  string
	ThreadID   string
	IsResolved bool
	Status     ResolutionStatus
}

// CommentHost is the abstract remote collaborator the triage core drives.
// Implementations own transport, auth, pagination, and retry policy; the
// core issues one call at a time and never overlaps in-flight requests.
type CommentHost interface {
	// Namespace returns the owner/repo identity this host is scoped to.
	Namespace() string

	// ListComments fetches all review and issue comments on a pull request,
	// including location and diff-excerpt fields when available.
	ListComments(ctx context.Context, prNumber int) ([]Comment, error)

	// GetSnippet returns the code around the comment's location with the
	// given before/after line window, or the diff excerpt as a fallback.
	GetSnippet(ctx context.Context, c Comment, linesBefore, linesAfter int) (string, error)

	// PostReply replies to a comment, threading when the host supports it.
	// Returns ErrCommentNotFound if the comment does not exist in the PR.
	PostReply(ctx context.Context, prNumber int, commentID, body string) (*Reply, error)

	// RequestResolution resolves the thread containing the comment.
	// Idempotent: an already-resolved thread yields ResolutionAlreadyResolved,
	// never an error. Returns ErrThreadNotFound if the comment belongs to no
	// resolvable thread.
	RequestResolution(ctx context.Context, prNumber int, commentID string) (*Resolution, error)
}
