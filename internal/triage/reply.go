package triage

import (
	"fmt"
	"strings"
)

// Reply templates are pure formatters keyed by (pattern, fixed). An empty
// name list renders as an empty backtick-list; that is accepted, not an error.

// ReplyUnusedImport formats the reply for an unused-import finding.
func ReplyUnusedImport(names []string, fixed bool) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, "`"+n+"`")
	}
	list := strings.Join(quoted, ", ")
	if fixed {
		return fmt.Sprintf("✅ Removed unused import(s): %s. Thanks for catching this!", list)
	}
	return fmt.Sprintf("Good catch! Will remove unused import(s): %s", list)
}

// ReplyImportLocation formats the reply for a misplaced-import finding.
func ReplyImportLocation(fromLine, toLine int, fixed bool) string {
	if fixed {
		return fmt.Sprintf("✅ Moved import to module level (line %d) per PEP 8. Thanks!", toLine)
	}
	return fmt.Sprintf("Good point! Will move import from line %d to module level per PEP 8.", fromLine)
}

// ReplyDuplicateImport formats the reply for a duplicate-import finding.
func ReplyDuplicateImport(fixed bool) string {
	if fixed {
		return "✅ Consolidated duplicate imports. Thanks!"
	}
	return "Good catch! Will consolidate these duplicate imports."
}

// ReplyAlreadyFixed is posted when the concern is addressed in current code.
func ReplyAlreadyFixed() string {
	return "This has already been addressed in the current code. Thanks for the review!"
}

// ReplyWillAddress is the generic acknowledgment.
func ReplyWillAddress() string {
	return "Thanks for the suggestion! Will address this."
}

// ReplyNotApplicable explains why a suggestion is being dismissed.
func ReplyNotApplicable(reason string) string {
	return "Thanks for the review! " + reason
}
