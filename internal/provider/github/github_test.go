package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpilot/reviewpilot/internal/provider"
)

// newTestClient creates a Client wired to a test HTTP server for both REST
// and GraphQL traffic.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rest, err := gh.NewClient(nil).WithEnterpriseURLs(server.URL+"/", server.URL+"/")
	require.NoError(t, err)

	return &Client{
		rest:        rest,
		gqlClient:   githubv4.NewEnterpriseClient(server.URL+"/api/graphql", http.DefaultClient),
		owner:       "testowner",
		repo:        "testrepo",
		token:       "test-token",
		statusCache: make(map[string]provider.CommentStatus),
	}
}

// threadFixture is a GraphQL review thread as the fake server reports it.
type threadFixture struct {
	id         string
	isResolved bool
	commentIDs []int64
}

// graphQLHandler answers reviewThreads queries and resolveReviewThread
// mutations from a mutable fixture set.
func graphQLHandler(t *testing.T, threads []threadFixture, mutations *int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		if strings.Contains(string(body), "resolveReviewThread") {
			if mutations != nil {
				*mutations++
			}
			var req struct {
				Variables struct {
					Input struct {
						ThreadID string `json:"threadId"`
					} `json:"input"`
				} `json:"variables"`
			}
			require.NoError(t, json.Unmarshal(body, &req))
			for i := range threads {
				if threads[i].id == req.Variables.Input.ThreadID {
					threads[i].isResolved = true
				}
			}
			fmt.Fprintf(w, `{"data":{"resolveReviewThread":{"thread":{"id":%q,"isResolved":true}}}}`,
				req.Variables.Input.ThreadID)
			return
		}

		nodes := make([]map[string]interface{}, 0, len(threads))
		for _, th := range threads {
			comments := make([]map[string]interface{}, 0, len(th.commentIDs))
			for _, id := range th.commentIDs {
				comments = append(comments, map[string]interface{}{"databaseId": id})
			}
			nodes = append(nodes, map[string]interface{}{
				"id":         th.id,
				"isResolved": th.isResolved,
				"comments":   map[string]interface{}{"nodes": comments},
			})
		}
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"repository": map[string]interface{}{
					"pullRequest": map[string]interface{}{
						"reviewThreads": map[string]interface{}{"nodes": nodes},
					},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func reviewCommentsHandler(comments []*gh.PullRequestComment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(comments)
	}
}

func issueCommentsHandler(comments []*gh.IssueComment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(comments)
	}
}

func TestNamespace(t *testing.T) {
	c := &Client{owner: "acme", repo: "rocket"}
	assert.Equal(t, "acme/rocket", c.Namespace())
}

func TestListComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/pulls/42/comments",
		reviewCommentsHandler([]*gh.PullRequestComment{
			{
				ID:       gh.Ptr(int64(1001)),
				Body:     gh.Ptr("unused import 'os'"),
				User:     &gh.User{Login: gh.Ptr("coderabbitai[bot]")},
				Path:     gh.Ptr("app/main.py"),
				Line:     gh.Ptr(3),
				DiffHunk: gh.Ptr("@@ -1,3 +1,3 @@"),
			},
			{
				ID:   gh.Ptr(int64(1002)),
				Body: gh.Ptr("missing docstring"),
				User: &gh.User{Login: gh.Ptr("reviewer")},
				Path: gh.Ptr("app/util.py"),
				Line: gh.Ptr(10),
			},
		}))
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/issues/42/comments",
		issueCommentsHandler([]*gh.IssueComment{
			{
				ID:   gh.Ptr(int64(2001)),
				Body: gh.Ptr("overall looks good"),
				User: &gh.User{Login: gh.Ptr("maintainer")},
			},
		}))
	mux.HandleFunc("POST /api/graphql", graphQLHandler(t, []threadFixture{
		{id: "T_1", isResolved: true, commentIDs: []int64{1001}},
		{id: "T_2", isResolved: false, commentIDs: []int64{1002}},
	}, nil))

	c := newTestClient(t, mux)
	comments, err := c.ListComments(t.Context(), 42)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, "1001", comments[0].ID)
	assert.Equal(t, provider.TypeReviewComment, comments[0].Type)
	assert.Equal(t, provider.StatusResolved, comments[0].Status)
	assert.Equal(t, "app/main.py", comments[0].FilePath)
	assert.Equal(t, 3, comments[0].Line)
	assert.Equal(t, "testowner/testrepo", comments[0].Repo)

	assert.Equal(t, "1002", comments[1].ID)
	assert.Equal(t, provider.StatusOpen, comments[1].Status)

	assert.Equal(t, "2001", comments[2].ID)
	assert.Equal(t, provider.TypeIssueComment, comments[2].Type)
	assert.Equal(t, provider.StatusOpen, comments[2].Status)
}

func TestListCommentsGraphQLFailureDefaultsOpen(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/pulls/42/comments",
		reviewCommentsHandler([]*gh.PullRequestComment{
			{ID: gh.Ptr(int64(1001)), Body: gh.Ptr("x"), User: &gh.User{Login: gh.Ptr("u")}},
		}))
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/issues/42/comments",
		issueCommentsHandler(nil))
	mux.HandleFunc("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := newTestClient(t, mux)
	comments, err := c.ListComments(t.Context(), 42)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, provider.StatusOpen, comments[0].Status)

	// a failed status lookup must not poison the cache
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	assert.Empty(t, c.statusCache)
}

func TestRenderSnippet(t *testing.T) {
	lines := []string{"import os", "import sys", "", "def main():", "    pass"}

	got := RenderSnippet(lines, 4, 2, 1)
	want := "       2 | import sys\n" +
		"       3 | \n" +
		">>>    4 | def main():\n" +
		"       5 |     pass"
	assert.Equal(t, want, got)
}

func TestRenderSnippetClampsWindow(t *testing.T) {
	lines := []string{"a", "b"}
	got := RenderSnippet(lines, 1, 5, 5)
	assert.Equal(t, ">>>    1 | a\n       2 | b", got)
}

func TestGetSnippetWithoutLocationFallsBackToHunk(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	snippet, err := c.GetSnippet(t.Context(), provider.Comment{
		Body:     "general remark",
		DiffHunk: "@@ -1 +1 @@\n-old\n+new",
	}, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, "@@ -1 +1 @@\n-old\n+new", snippet)
}

func TestGetSnippetFetchesFileContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/pulls/42", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&gh.PullRequest{
			Number: gh.Ptr(42),
			Head:   &gh.PullRequestBranch{Ref: gh.Ptr("feature")},
		})
	})
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/contents/app/main.py", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "feature", r.URL.Query().Get("ref"))
		json.NewEncoder(w).Encode(&gh.RepositoryContent{
			Type:     gh.Ptr("file"),
			Encoding: gh.Ptr(""),
			Content:  gh.Ptr("import os\nimport sys\nprint('hi')"),
		})
	})

	c := newTestClient(t, mux)
	snippet, err := c.GetSnippet(t.Context(), provider.Comment{
		FilePath: "app/main.py",
		Line:     2,
		PRNumber: 42,
	}, 1, 1)
	require.NoError(t, err)
	assert.Contains(t, snippet, ">>>    2 | import sys")
	assert.Contains(t, snippet, "       1 | import os")
}

func TestPostReplyReviewComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/pulls/42/comments",
		reviewCommentsHandler([]*gh.PullRequestComment{
			{ID: gh.Ptr(int64(1001)), Body: gh.Ptr("x"), User: &gh.User{Login: gh.Ptr("u")}},
		}))
	mux.HandleFunc("POST /api/v3/repos/testowner/testrepo/pulls/42/comments", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body      string `json:"body"`
			InReplyTo int64  `json:"in_reply_to"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1001), req.InReplyTo)
		json.NewEncoder(w).Encode(&gh.PullRequestComment{
			ID:      gh.Ptr(int64(3001)),
			Body:    gh.Ptr(req.Body),
			HTMLURL: gh.Ptr("https://github.com/testowner/testrepo/pull/42#discussion_r3001"),
		})
	})

	c := newTestClient(t, mux)
	reply, err := c.PostReply(t.Context(), 42, "1001", "✅ Fixed")
	require.NoError(t, err)
	assert.Equal(t, "3001", reply.ID)
	assert.Equal(t, "✅ Fixed", reply.Body)
	assert.Equal(t, provider.TypeReviewComment, reply.Type)
}

func TestPostReplyIssueCommentQuotesOriginal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/pulls/42/comments",
		reviewCommentsHandler(nil))
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/issues/42/comments",
		issueCommentsHandler([]*gh.IssueComment{
			{ID: gh.Ptr(int64(2001)), Body: gh.Ptr("x"), User: &gh.User{Login: gh.Ptr("u")}},
		}))
	mux.HandleFunc("POST /api/v3/repos/testowner/testrepo/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, strings.HasPrefix(req.Body, "> Replying to comment 2001\n\n"))
		json.NewEncoder(w).Encode(&gh.IssueComment{
			ID:   gh.Ptr(int64(3002)),
			Body: gh.Ptr(req.Body),
		})
	})

	c := newTestClient(t, mux)
	reply, err := c.PostReply(t.Context(), 42, "2001", "✅ Acknowledged")
	require.NoError(t, err)
	assert.Equal(t, "3002", reply.ID)
	assert.Equal(t, provider.TypeIssueComment, reply.Type)
}

func TestPostReplyUnknownComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/pulls/42/comments",
		reviewCommentsHandler(nil))
	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/issues/42/comments",
		issueCommentsHandler(nil))

	c := newTestClient(t, mux)
	_, err := c.PostReply(t.Context(), 42, "9999", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrCommentNotFound)
}

func TestRequestResolution(t *testing.T) {
	mutations := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/graphql", graphQLHandler(t, []threadFixture{
		{id: "T_1", isResolved: false, commentIDs: []int64{1001}},
	}, &mutations))

	c := newTestClient(t, mux)
	c.statusCache["1001"] = provider.StatusOpen

	res, err := c.RequestResolution(t.Context(), 42, "1001")
	require.NoError(t, err)
	assert.Equal(t, provider.ResolutionResolved, res.Status)
	assert.True(t, res.IsResolved)
	assert.Equal(t, "T_1", res.ThreadID)
	assert.Equal(t, 1, mutations)

	// resolution must invalidate, not update, the cached status
	c.cacheMu.Lock()
	_, cached := c.statusCache["1001"]
	c.cacheMu.Unlock()
	assert.False(t, cached)
}

func TestRequestResolutionAlreadyResolved(t *testing.T) {
	mutations := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/graphql", graphQLHandler(t, []threadFixture{
		{id: "T_1", isResolved: true, commentIDs: []int64{1001}},
	}, &mutations))

	c := newTestClient(t, mux)

	// repeated requests stay idempotent and never mutate
	for i := 0; i < 2; i++ {
		res, err := c.RequestResolution(t.Context(), 42, "1001")
		require.NoError(t, err)
		assert.Equal(t, provider.ResolutionAlreadyResolved, res.Status)
		assert.True(t, res.IsResolved)
	}
	assert.Equal(t, 0, mutations)
}

func TestRequestResolutionThreadNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/graphql", graphQLHandler(t, []threadFixture{
		{id: "T_1", isResolved: false, commentIDs: []int64{1001}},
	}, nil))

	c := newTestClient(t, mux)
	_, err := c.RequestResolution(t.Context(), 42, "5555")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrThreadNotFound)
}

func TestThreadStatusCachesObservedStatuses(t *testing.T) {
	c := &Client{statusCache: make(map[string]provider.CommentStatus)}
	threads := []reviewThread{
		{ID: "T_1", IsResolved: true, CommentIDs: []int64{7}},
	}

	assert.Equal(t, provider.StatusResolved, c.threadStatus("7", threads))
	// cached now; a stale thread list no longer matters
	assert.Equal(t, provider.StatusResolved, c.threadStatus("7", nil))

	// comments outside any thread default open without caching
	assert.Equal(t, provider.StatusOpen, c.threadStatus("8", threads))
	_, cached := c.statusCache["8"]
	assert.False(t, cached)
}
