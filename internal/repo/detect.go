// Package repo detects the GitHub repository a working directory belongs to
// by inspecting its git remotes.
package repo

import (
	"fmt"
	"os/exec"
	"strings"
)

// Detect returns the "owner/repo" namespace of the origin remote in dir.
// dir may be empty to use the current working directory.
func Detect(dir string) (string, error) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to read origin remote (is this a git repository?): %w", err)
	}
	remote := strings.TrimSpace(string(out))

	namespace, ok := ParseGitHubRemote(remote)
	if !ok {
		return "", fmt.Errorf("origin remote %q is not a GitHub repository", remote)
	}
	return namespace, nil
}

// ParseGitHubRemote extracts "owner/repo" from a GitHub remote URL. Supports
// the https, ssh, and scp-like forms git produces:
//
//	https://github.com/owner/repo.git
//	git@github.com:owner/repo.git
//	ssh://git@github.com/owner/repo.git
//	github.com:owner/repo
func ParseGitHubRemote(remote string) (string, bool) {
	remote = strings.TrimSpace(remote)
	remote = strings.TrimSuffix(remote, "/")

	var path string
	switch {
	case strings.HasPrefix(remote, "https://github.com/"):
		path = strings.TrimPrefix(remote, "https://github.com/")
	case strings.HasPrefix(remote, "http://github.com/"):
		path = strings.TrimPrefix(remote, "http://github.com/")
	case strings.HasPrefix(remote, "ssh://git@github.com/"):
		path = strings.TrimPrefix(remote, "ssh://git@github.com/")
	case strings.HasPrefix(remote, "git@github.com:"):
		path = strings.TrimPrefix(remote, "git@github.com:")
	case strings.HasPrefix(remote, "github.com:"):
		path = strings.TrimPrefix(remote, "github.com:")
	default:
		return "", false
	}

	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}

// Split breaks an "owner/repo" namespace into its parts.
func Split(namespace string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(namespace, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", namespace)
	}
	return owner, name, nil
}
