package provider

import (
	"strings"
	"time"
)

// Filters narrows a fetched comment list. Zero values mean "no constraint".
type Filters struct {
	// Authors keeps only comments by these logins.
	Authors []string
	// Status keeps only comments whose thread is in this state.
	Status CommentStatus
	// Types keeps only the listed comment types.
	Types []CommentType
	// Keywords keeps comments whose body contains any keyword (case-insensitive).
	Keywords []string
	// MinAgeDays keeps only comments older than this many days.
	MinAgeDays int
}

// Apply filters comments, preserving fetch order.
func (f Filters) Apply(comments []Comment) []Comment {
	filtered := comments

	if len(f.Authors) > 0 {
		filtered = keep(filtered, func(c Comment) bool {
			for _, a := range f.Authors {
				if c.Author == a {
					return true
				}
			}
			return false
		})
	}

	if f.Status != "" {
		filtered = keep(filtered, func(c Comment) bool { return c.Status == f.Status })
	}

	if len(f.Types) > 0 {
		filtered = keep(filtered, func(c Comment) bool {
			for _, t := range f.Types {
				if c.Type == t {
					return true
				}
			}
			return false
		})
	}

	if len(f.Keywords) > 0 {
		filtered = keep(filtered, func(c Comment) bool {
			body := strings.ToLower(c.Body)
			for _, kw := range f.Keywords {
				if strings.Contains(body, strings.ToLower(kw)) {
					return true
				}
			}
			return false
		})
	}

	if f.MinAgeDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -f.MinAgeDays)
		filtered = keep(filtered, func(c Comment) bool { return c.CreatedAt.Before(cutoff) })
	}

	return filtered
}

func keep(comments []Comment, pred func(Comment) bool) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}
