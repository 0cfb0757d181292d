package config

// Config is the top-level reviewpilot configuration.
type Config struct {
	GitHub  GitHubConfig  `json:"github"`
	Triage  TriageConfig  `json:"triage"`
	Reports ReportsConfig `json:"reports"`
}

// GitHubConfig holds API credentials and the default repository.
type GitHubConfig struct {
	Token string `json:"token,omitempty"`
	// Repo is the default "owner/repo" namespace. When empty, the
	// repository is detected from the working directory's git remotes.
	Repo string `json:"repo,omitempty"`
}

// TriageConfig controls comment analysis behavior.
type TriageConfig struct {
	// LinesBefore/LinesAfter size the code snippet window fetched around a
	// commented line.
	LinesBefore int `json:"lines_before"`
	LinesAfter  int `json:"lines_after"`
	// BotAuthors supplements the built-in list of known review bot logins.
	BotAuthors []string `json:"bot_authors,omitempty"`
}

// ReportsConfig controls where batch triage reports are written.
type ReportsConfig struct {
	Dir string `json:"dir"`
}

// DefaultConfig returns the built-in defaults, applied before any config
// file or environment override.
func DefaultConfig() Config {
	return Config{
		Triage: TriageConfig{
			LinesBefore: 10,
			LinesAfter:  10,
		},
		Reports: ReportsConfig{
			Dir: ".reviewpilot/reports",
		},
	}
}
