package cli

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/reviewpilot/reviewpilot/internal/provider"
	"github.com/reviewpilot/reviewpilot/internal/provider/github"
	"github.com/reviewpilot/reviewpilot/internal/repo"
)

// buildRegistry creates a host registry that constructs one GitHub client
// per owner/repo namespace.
func buildRegistry() *provider.Registry {
	return provider.NewRegistry(func(namespace string) (provider.CommentHost, error) {
		owner, name, err := repo.Split(namespace)
		if err != nil {
			return nil, err
		}
		token := resolveToken()
		if token == "" {
			return nil, fmt.Errorf("no GitHub token: set github.token in config or the GITHUB_TOKEN environment variable")
		}
		return github.NewClient(owner, name, token), nil
	})
}

// resolveToken prefers the configured token, falling back to the gh CLI's
// stored auth.
func resolveToken() string {
	if appConfig != nil && appConfig.GitHub.Token != "" {
		return appConfig.GitHub.Token
	}
	if out, err := exec.Command("gh", "auth", "token").Output(); err == nil {
		return strings.TrimSpace(string(out))
	}
	return ""
}

// resolveNamespace picks the target repository: the --repo flag, then the
// configured default, then the origin remote of the working directory.
func resolveNamespace() (string, error) {
	if repoFlag != "" {
		return repoFlag, nil
	}
	if appConfig != nil && appConfig.GitHub.Repo != "" {
		return appConfig.GitHub.Repo, nil
	}
	return repo.Detect("")
}

// currentHost returns the CommentHost for the resolved namespace.
func currentHost() (provider.CommentHost, error) {
	namespace, err := resolveNamespace()
	if err != nil {
		return nil, err
	}
	return buildRegistry().Host(namespace)
}

// parsePRNumber parses a PR argument, accepting "42" or "#42".
func parsePRNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid PR number %q", arg)
	}
	return n, nil
}

// findComment fetches the PR's comments and returns the one with the given ID.
func findComment(ctx context.Context, host provider.CommentHost, prNumber int, commentID string) (*provider.Comment, error) {
	comments, err := host.ListComments(ctx, prNumber)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].ID == commentID {
			return &comments[i], nil
		}
	}
	return nil, fmt.Errorf("comment %s in PR %d: %w", commentID, prNumber, provider.ErrCommentNotFound)
}

// truncateStr shortens s for table display.
func truncateStr(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
