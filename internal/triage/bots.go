package triage

// KnownBotAuthors are the review-bot logins triage commands filter on by
// default. Overridable via configuration.
var KnownBotAuthors = []string{
	"github-copilot",
	"Copilot",
	"github-advanced-security",
	"github-code-quality[bot]",
	"dependabot",
	"dependabot[bot]",
	"snyk-bot",
	"codecov",
	"codecov-io",
	"renovate",
	"renovate[bot]",
	"deepsource-io[bot]",
	"sonarcloud[bot]",
}

// IsBotAuthor reports whether login is in the known bot table.
func IsBotAuthor(login string) bool {
	for _, b := range KnownBotAuthors {
		if login == b {
			return true
		}
	}
	return false
}
