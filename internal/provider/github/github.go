// Package github implements provider.CommentHost for GitHub pull requests.
// REST (go-github) covers comment listing, replies, and file contents;
// thread status and resolution require the GraphQL API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/reviewpilot/reviewpilot/internal/provider"
)

// Client is a CommentHost scoped to a single owner/repo namespace. Each
// client owns its thread-status cache; clients are never shared across
// namespaces (see provider.Registry).
type Client struct {
	rest      *gh.Client
	gqlOnce   sync.Once
	gqlClient *githubv4.Client
	owner     string
	repo      string
	token     string

	// statusCache maps comment ID to last-known thread status. Entries are
	// removed, never updated, when a thread is resolved locally: the
	// authoritative state lives remotely and must be re-read.
	cacheMu     sync.Mutex
	statusCache map[string]provider.CommentStatus
}

// NewClient creates a GitHub host for owner/repo. Uses go-github-ratelimit
// middleware for automatic rate limit handling.
func NewClient(owner, repo, token string) *Client {
	rateLimiter := github_ratelimit.NewClient(nil)
	rest := gh.NewClient(rateLimiter).WithAuthToken(token)
	return &Client{
		rest:        rest,
		owner:       owner,
		repo:        repo,
		token:       token,
		statusCache: make(map[string]provider.CommentStatus),
	}
}

// Namespace returns the "owner/repo" identity this client is scoped to.
func (c *Client) Namespace() string {
	return c.owner + "/" + c.repo
}

// ListComments fetches review (inline) and issue (general) comments for a
// pull request. Review comment thread statuses come from one GraphQL scan;
// if that scan fails the statuses default to open and nothing is cached, so
// the next call retries.
func (c *Client) ListComments(ctx context.Context, prNumber int) ([]provider.Comment, error) {
	threads, err := c.fetchThreads(ctx, prNumber)
	if err != nil {
		slog.Warn("failed to fetch review thread statuses, defaulting to open", "error", err)
		threads = nil
	}

	var comments []provider.Comment

	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		reviewComments, resp, err := c.rest.PullRequests.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments: %w", err)
		}
		for _, rc := range reviewComments {
			id := strconv.FormatInt(rc.GetID(), 10)
			comments = append(comments, provider.Comment{
				ID:        id,
				Type:      provider.TypeReviewComment,
				Author:    rc.GetUser().GetLogin(),
				Body:      rc.GetBody(),
				CreatedAt: rc.GetCreatedAt().Time,
				UpdatedAt: rc.GetUpdatedAt().Time,
				Status:    c.threadStatus(id, threads),
				FilePath:  rc.GetPath(),
				Line:      reviewCommentLine(rc),
				DiffHunk:  rc.GetDiffHunk(),
				HTMLURL:   rc.GetHTMLURL(),
				PRNumber:  prNumber,
				Repo:      c.Namespace(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	issueOpts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		issueComments, resp, err := c.rest.Issues.ListComments(ctx, c.owner, c.repo, prNumber, issueOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments: %w", err)
		}
		for _, ic := range issueComments {
			comments = append(comments, provider.Comment{
				ID:        strconv.FormatInt(ic.GetID(), 10),
				Type:      provider.TypeIssueComment,
				Author:    ic.GetUser().GetLogin(),
				Body:      ic.GetBody(),
				CreatedAt: ic.GetCreatedAt().Time,
				UpdatedAt: ic.GetUpdatedAt().Time,
				// Issue comments have no resolvable thread.
				Status:   provider.StatusOpen,
				HTMLURL:  ic.GetHTMLURL(),
				PRNumber: prNumber,
				Repo:     c.Namespace(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		issueOpts.Page = resp.NextPage
	}

	return comments, nil
}

// reviewCommentLine prefers the current line, falling back to the original
// line for outdated positions.
func reviewCommentLine(rc *gh.PullRequestComment) int {
	if rc.GetLine() != 0 {
		return rc.GetLine()
	}
	return rc.GetOriginalLine()
}

// GetSnippet returns the code window around a comment's location with ">>>"
// marking the commented line. Falls back to the stored diff hunk when the
// comment has no location or the file fetch fails.
func (c *Client) GetSnippet(ctx context.Context, comment provider.Comment, linesBefore, linesAfter int) (string, error) {
	if comment.FilePath == "" || comment.Line <= 0 {
		if comment.DiffHunk != "" {
			return comment.DiffHunk, nil
		}
		return comment.Body, nil
	}

	pr, _, err := c.rest.PullRequests.Get(ctx, c.owner, c.repo, comment.PRNumber)
	if err != nil {
		return snippetFallback(comment, err), nil
	}

	content, _, _, err := c.rest.Repositories.GetContents(ctx, c.owner, c.repo, comment.FilePath,
		&gh.RepositoryContentGetOptions{Ref: pr.GetHead().GetRef()})
	if err != nil || content == nil {
		return snippetFallback(comment, err), nil
	}
	text, err := content.GetContent()
	if err != nil {
		return snippetFallback(comment, err), nil
	}

	return RenderSnippet(strings.Split(text, "\n"), comment.Line, linesBefore, linesAfter), nil
}

// snippetFallback degrades to the diff hunk rather than failing: snippet
// retrieval is advisory context, and the analyzers all tolerate hunk text.
func snippetFallback(comment provider.Comment, err error) string {
	hunk := comment.DiffHunk
	if hunk == "" {
		hunk = "Not available"
	}
	return fmt.Sprintf("Error fetching file content: %v\n\nDiff hunk:\n%s", err, hunk)
}

// RenderSnippet formats a line window with a ">>> NNNN | code" gutter,
// marking the target line. lineNumber is 1-indexed.
func RenderSnippet(lines []string, lineNumber, linesBefore, linesAfter int) string {
	lineIdx := lineNumber - 1
	start := lineIdx - linesBefore
	if start < 0 {
		start = 0
	}
	end := lineIdx + linesAfter + 1
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		marker := "   "
		if i == lineIdx {
			marker = ">>>"
		}
		fmt.Fprintf(&sb, "%s %4d | %s\n", marker, i+1, lines[i])
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// PostReply replies to a comment. Review comments get a threaded reply;
// issue comments have no threading on GitHub, so the reply is a general PR
// comment referencing the original.
func (c *Client) PostReply(ctx context.Context, prNumber int, commentID, body string) (*provider.Reply, error) {
	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID %q: %w", commentID, err)
	}

	isReview, err := c.isReviewComment(ctx, prNumber, id)
	if err != nil {
		return nil, err
	}

	if isReview {
		reply, _, err := c.rest.PullRequests.CreateCommentInReplyTo(ctx, c.owner, c.repo, prNumber, body, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reply to review comment %s: %w", commentID, err)
		}
		return &provider.Reply{
			ID:   strconv.FormatInt(reply.GetID(), 10),
			URL:  reply.GetHTMLURL(),
			Body: reply.GetBody(),
			Type: provider.TypeReviewComment,
		}, nil
	}

	isIssue, err := c.isIssueComment(ctx, prNumber, id)
	if err != nil {
		return nil, err
	}
	if !isIssue {
		return nil, fmt.Errorf("comment %s in PR %d: %w", commentID, prNumber, provider.ErrCommentNotFound)
	}

	quoted := fmt.Sprintf("> Replying to comment %s\n\n%s", commentID, body)
	reply, _, err := c.rest.Issues.CreateComment(ctx, c.owner, c.repo, prNumber, &gh.IssueComment{
		Body: gh.Ptr(quoted),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reply to issue comment %s: %w", commentID, err)
	}
	return &provider.Reply{
		ID:   strconv.FormatInt(reply.GetID(), 10),
		URL:  reply.GetHTMLURL(),
		Body: reply.GetBody(),
		Type: provider.TypeIssueComment,
	}, nil
}

func (c *Client) isReviewComment(ctx context.Context, prNumber int, id int64) (bool, error) {
	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.rest.PullRequests.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return false, fmt.Errorf("failed to list review comments: %w", err)
		}
		for _, rc := range comments {
			if rc.GetID() == id {
				return true, nil
			}
		}
		if resp.NextPage == 0 {
			return false, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) isIssueComment(ctx context.Context, prNumber int, id int64) (bool, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.rest.Issues.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return false, fmt.Errorf("failed to list issue comments: %w", err)
		}
		for _, ic := range comments {
			if ic.GetID() == id {
				return true, nil
			}
		}
		if resp.NextPage == 0 {
			return false, nil
		}
		opts.Page = resp.NextPage
	}
}

// reviewThread is one GraphQL review thread with its member comment IDs.
type reviewThread struct {
	ID         string
	IsResolved bool
	CommentIDs []int64
}

// fetchThreads queries the GraphQL API for all review threads on a PR.
func (c *Client) fetchThreads(ctx context.Context, prNumber int) ([]reviewThread, error) {
	var query struct {
		Repository struct {
			PullRequest struct {
				ReviewThreads struct {
					Nodes []struct {
						ID         githubv4.ID
						IsResolved bool
						Comments   struct {
							Nodes []struct {
								DatabaseID int64
							}
						} `graphql:"comments(first: 100)"`
					}
				} `graphql:"reviewThreads(first: 100)"`
			} `graphql:"pullRequest(number: $pr)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	vars := map[string]interface{}{
		"owner": githubv4.String(c.owner),
		"name":  githubv4.String(c.repo),
		"pr":    githubv4.Int(prNumber),
	}

	if err := c.graphQL(ctx).Query(ctx, &query, vars); err != nil {
		return nil, fmt.Errorf("querying review threads: %w", err)
	}

	threads := make([]reviewThread, 0, len(query.Repository.PullRequest.ReviewThreads.Nodes))
	for _, node := range query.Repository.PullRequest.ReviewThreads.Nodes {
		t := reviewThread{
			ID:         fmt.Sprintf("%v", node.ID),
			IsResolved: node.IsResolved,
		}
		for _, cm := range node.Comments.Nodes {
			t.CommentIDs = append(t.CommentIDs, cm.DatabaseID)
		}
		threads = append(threads, t)
	}
	return threads, nil
}

// threadStatus resolves a comment's thread status, preferring the cache.
// Freshly observed statuses are cached; unknown comments default to open
// without caching, erring toward not falsely claiming resolution.
func (c *Client) threadStatus(commentID string, threads []reviewThread) provider.CommentStatus {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if status, ok := c.statusCache[commentID]; ok {
		return status
	}

	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return provider.StatusOpen
	}
	for _, t := range threads {
		for _, member := range t.CommentIDs {
			if member == id {
				status := provider.StatusOpen
				if t.IsResolved {
					status = provider.StatusResolved
				}
				c.statusCache[commentID] = status
				return status
			}
		}
	}
	return provider.StatusOpen
}

// invalidateStatus removes a comment's cache entry. Called after any
// successful resolution so the next status query re-reads the source of
// truth instead of trusting a local assumption.
func (c *Client) invalidateStatus(commentID string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	delete(c.statusCache, commentID)
}

// RequestResolution resolves the review thread containing commentID.
// Requesting resolution of an already-resolved thread returns an
// already_resolved outcome rather than erroring. On any successful outcome
// the comment's status cache entry is invalidated.
func (c *Client) RequestResolution(ctx context.Context, prNumber int, commentID string) (*provider.Resolution, error) {
	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID %q: %w", commentID, err)
	}

	threads, err := c.fetchThreads(ctx, prNumber)
	if err != nil {
		return nil, err
	}

	var thread *reviewThread
	for i := range threads {
		for _, member := range threads[i].CommentIDs {
			if member == id {
				thread = &threads[i]
				break
			}
		}
		if thread != nil {
			break
		}
	}
	if thread == nil {
		return nil, fmt.Errorf("comment %s in PR %d: %w", commentID, prNumber, provider.ErrThreadNotFound)
	}

	if thread.IsResolved {
		c.invalidateStatus(commentID)
		return &provider.Resolution{
			CommentID:  commentID,
			ThreadID:   thread.ID,
			IsResolved: true,
			Status:     provider.ResolutionAlreadyResolved,
		}, nil
	}

	var mutation struct {
		ResolveReviewThread struct {
			Thread struct {
				ID         githubv4.ID
				IsResolved bool
			}
		} `graphql:"resolveReviewThread(input: $input)"`
	}
	input := githubv4.ResolveReviewThreadInput{
		ThreadID: githubv4.ID(thread.ID),
	}
	if err := c.graphQL(ctx).Mutate(ctx, &mutation, input, nil); err != nil {
		return nil, fmt.Errorf("failed to resolve review thread %s: %w", thread.ID, err)
	}
	if !mutation.ResolveReviewThread.Thread.IsResolved {
		return nil, fmt.Errorf("thread %s resolution failed: still unresolved after mutation", thread.ID)
	}

	c.invalidateStatus(commentID)
	return &provider.Resolution{
		CommentID:  commentID,
		ThreadID:   thread.ID,
		IsResolved: true,
		Status:     provider.ResolutionResolved,
	}, nil
}

// graphQL returns (and lazily creates) the GraphQL client.
// Thread-safe via sync.Once.
func (c *Client) graphQL(ctx context.Context) *githubv4.Client {
	c.gqlOnce.Do(func() {
		if c.gqlClient != nil {
			return
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		httpClient := oauth2.NewClient(ctx, ts)
		c.gqlClient = githubv4.NewClient(httpClient)
	})
	return c.gqlClient
}

// Verify Client implements CommentHost at compile time.
var _ provider.CommentHost = (*Client)(nil)
