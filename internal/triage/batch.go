package triage

import (
	"sort"
	"strings"

	"github.com/reviewpilot/reviewpilot/internal/provider"
)

// Category groups comments by subject matter.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryBugs        Category = "bugs"
	CategoryPerformance Category = "performance"
	CategoryQuality     Category = "quality"
	CategoryOther       Category = "other"
)

var securityKeywords = []string{"security", "vulnerability", "injection", "xss", "sql", "auth"}
var bugKeywords = []string{"bug", "error", "crash", "exception", "null", "undefined", "race condition"}
var performanceKeywords = []string{"performance", "optimize", "slow", "memory", "leak"}
var qualityKeywords = []string{"refactor", "extract", "simplify", "complexity", "duplicate", "naming"}

var highPriorityKeywords = []string{"security", "vulnerability", "critical", "injection", "authentication", "crash"}
var mediumPriorityKeywords = []string{"bug", "error", "performance", "memory", "race condition"}

// previewLimit caps the body excerpt carried in a batch item.
const previewLimit = 100

// BatchItem is one prioritized entry in a batch result.
type BatchItem struct {
	CommentID  string   `json:"comment_id"`
	Priority   Priority `json:"priority"`
	Category   Category `json:"category"`
	Author     string   `json:"author"`
	FilePath   string   `json:"file_path,omitempty"`
	LineNumber int      `json:"line_number,omitempty"`
	Preview    string   `json:"preview"`
}

// BatchResult aggregates a comment list into category counts and a
// priority-sorted queue.
type BatchResult struct {
	TotalComments int                    `json:"total_comments"`
	Categories    map[Category]int       `json:"categories"`
	Priorities    []BatchItem            `json:"priorities"`
	ByStatus      map[ValidityStatus]int `json:"by_status"`
}

// BatchAnalyze categorizes and prioritizes a batch of comments. Per-comment
// validity analysis is intentionally skipped for throughput: every comment is
// counted as uncertain in ByStatus. Callers wanting real validity verdicts
// must run AnalyzeValidity per comment.
//
// The priority sort is stable and ordered by rank only; comments of equal
// rank keep their original fetch order.
func BatchAnalyze(comments []provider.Comment) BatchResult {
	result := BatchResult{
		TotalComments: len(comments),
		Categories:    make(map[Category]int),
		ByStatus:      make(map[ValidityStatus]int),
		Priorities:    make([]BatchItem, 0, len(comments)),
	}

	for _, c := range comments {
		category := Categorize(c.Body)
		result.Categories[category]++
		result.ByStatus[StatusUncertain]++

		result.Priorities = append(result.Priorities, BatchItem{
			CommentID:  c.ID,
			Priority:   DeterminePriority(c.Body),
			Category:   category,
			Author:     c.Author,
			FilePath:   c.FilePath,
			LineNumber: c.Line,
			Preview:    preview(c.Body),
		})
	}

	sort.SliceStable(result.Priorities, func(i, j int) bool {
		return result.Priorities[i].Priority.rank() < result.Priorities[j].Priority.rank()
	})

	return result
}

// Categorize maps a lower-cased comment body to a Category. Keyword sets are
// tested in fixed order; the first hit wins and "other" is the fallback.
func Categorize(body string) Category {
	body = strings.ToLower(body)
	switch {
	case containsAny(body, securityKeywords):
		return CategorySecurity
	case containsAny(body, bugKeywords):
		return CategoryBugs
	case containsAny(body, performanceKeywords):
		return CategoryPerformance
	case containsAny(body, qualityKeywords):
		return CategoryQuality
	}
	return CategoryOther
}

// DeterminePriority ranks a lower-cased comment body. Absence from both
// keyword sets yields low.
func DeterminePriority(body string) Priority {
	body = strings.ToLower(body)
	switch {
	case containsAny(body, highPriorityKeywords):
		return PriorityHigh
	case containsAny(body, mediumPriorityKeywords):
		return PriorityMedium
	}
	return PriorityLow
}

func containsAny(body string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLimit {
		return body
	}
	return string(runes[:previewLimit]) + "..."
}
