// Package config loads reviewpilot configuration from layered JSONC files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"
)

// Load reads and merges configuration. Resolution order: built-in defaults,
// user config (~/.config/reviewpilot/reviewpilot.jsonc), repo config
// (.reviewpilot/reviewpilot.jsonc at the git root), then environment
// variables. Later layers deep-merge over earlier ones.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path, err := UserConfigPath(); err == nil {
		if userMap, err := loadJSONC(path); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	if root := findRepoRoot(); root != "" {
		repoPath := filepath.Join(root, ".reviewpilot", "reviewpilot.jsonc")
		if repoMap, err := loadJSONC(repoPath); err == nil {
			if err := mergeIntoConfig(&cfg, repoMap); err != nil {
				return nil, fmt.Errorf("merging repo config: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// UserConfigPath returns the path of the user-level config file.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reviewpilot", "reviewpilot.jsonc"), nil
}

// Set updates a single key in the user-level config file in place,
// preserving the rest of the document. key uses dotted-path notation, for
// example "triage.lines_before".
func Set(path, key, value string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		existing = []byte("{}")
	} else {
		// sjson requires valid JSON, so strip JSONC comments first
		existing = jsonc.ToJSON(existing)
	}

	var updated string
	// try the value as JSON first (numbers, bools, arrays); fall back to string
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		updated, err = sjson.Set(string(existing), key, parsed)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	} else {
		updated, err = sjson.Set(string(existing), key, value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, []byte(updated), 0600)
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map
// over it, then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// findRepoRoot finds the git repository root via git rev-parse.
func findRepoRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if repo := os.Getenv("REVIEWPILOT_REPO"); repo != "" {
		cfg.GitHub.Repo = repo
	}
}
