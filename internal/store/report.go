package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/reviewpilot/reviewpilot/internal/triage"
)

// Report is a persisted snapshot of a batch triage run.
type Report struct {
	Repo          string
	PRNumber      int
	GeneratedAt   time.Time
	TotalComments int
	Result        triage.BatchResult
}

// WriteReport renders the report to markdown and writes it under the store
// directory as <owner>-<repo>-pr<N>.md. Returns the written path.
func (s *Store) WriteReport(r *Report) (string, error) {
	path := s.reportPath(r.Repo, r.PRNumber)

	doc := &document{
		meta: map[string]any{
			"repo":           r.Repo,
			"pr":             r.PRNumber,
			"generated_at":   r.GeneratedAt.Format(time.RFC3339),
			"total_comments": r.TotalComments,
		},
		body: renderReport(r),
	}
	if err := writeDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// ReadReportMeta reads back the identifying frontmatter of a stored report.
func (s *Store) ReadReportMeta(path string) (repo string, prNumber int, generatedAt time.Time, err error) {
	doc, err := readDocument(path)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	return metaString(doc.meta, "repo"), metaInt(doc.meta, "pr"), metaTime(doc.meta, "generated_at"), nil
}

func (s *Store) reportPath(repo string, prNumber int) string {
	name := fmt.Sprintf("%s-pr%d.md", strings.ReplaceAll(repo, "/", "-"), prNumber)
	return filepath.Join(s.dir, name)
}

func renderReport(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Triage report: %s #%d\n\n", r.Repo, r.PRNumber)
	fmt.Fprintf(&sb, "%d comments analyzed on %s.\n\n",
		r.TotalComments, r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	sb.WriteString("## Categories\n\n")
	categories := make([]string, 0, len(r.Result.Categories))
	for c := range r.Result.Categories {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&sb, "- %s: %d\n", c, r.Result.Categories[triage.Category(c)])
	}

	sb.WriteString("\n## Priority queue\n\n")
	sb.WriteString("| Priority | Comment | Author | Location | Preview |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, item := range r.Result.Priorities {
		location := "-"
		if item.FilePath != "" {
			location = fmt.Sprintf("%s:%d", item.FilePath, item.LineNumber)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			item.Priority, item.CommentID, item.Author, location, sanitizeCell(item.Preview))
	}

	return sb.String()
}

// sanitizeCell keeps comment text from breaking the markdown table.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
