package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.Triage.LinesBefore)
	assert.Equal(t, 10, cfg.Triage.LinesAfter)
	assert.Equal(t, ".reviewpilot/reports", cfg.Reports.Dir)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestMergeIntoConfig(t *testing.T) {
	cfg := DefaultConfig()
	err := mergeIntoConfig(&cfg, map[string]any{
		"github": map[string]any{
			"repo": "acme/rocket",
		},
		"triage": map[string]any{
			"lines_before": 5,
			"bot_authors":  []any{"custom-bot"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "acme/rocket", cfg.GitHub.Repo)
	assert.Equal(t, 5, cfg.Triage.LinesBefore)
	// untouched keys keep their defaults after a partial merge
	assert.Equal(t, 10, cfg.Triage.LinesAfter)
	assert.Equal(t, []string{"custom-bot"}, cfg.Triage.BotAuthors)
}

func TestLoadJSONCStripsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviewpilot.jsonc")
	content := `{
	// default repository
	"github": {
		"repo": "acme/rocket", // trailing comma tolerated below
	},
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := loadJSONC(path)
	require.NoError(t, err)
	github, ok := m["github"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acme/rocket", github["repo"])
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("REVIEWPILOT_REPO", "env-owner/env-repo")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "env-token", cfg.GitHub.Token)
	assert.Equal(t, "env-owner/env-repo", cfg.GitHub.Repo)
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviewpilot.jsonc")

	require.NoError(t, Set(path, "github.repo", "acme/rocket"))
	require.NoError(t, Set(path, "triage.lines_before", "5"))

	m, err := loadJSONC(path)
	require.NoError(t, err)

	github := m["github"].(map[string]any)
	assert.Equal(t, "acme/rocket", github["repo"])
	triage := m["triage"].(map[string]any)
	// numeric values are stored as numbers, not strings
	assert.Equal(t, float64(5), triage["lines_before"])
}

func TestSetPreservesExistingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviewpilot.jsonc")
	require.NoError(t, Set(path, "github.repo", "acme/rocket"))
	require.NoError(t, Set(path, "reports.dir", "out/reports"))

	m, err := loadJSONC(path)
	require.NoError(t, err)
	assert.Equal(t, "acme/rocket", m["github"].(map[string]any)["repo"])
	assert.Equal(t, "out/reports", m["reports"].(map[string]any)["dir"])
}
