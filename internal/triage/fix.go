package triage

import (
	"fmt"
	"regexp"
	"strings"
)

// NoFixExplanation is the sentinel explanation returned when a statement
// shape cannot be confidently transformed. It is a declined fix, never an
// error: errors from this file mean the caller passed bad indices.
const NoFixExplanation = "could not automatically fix"

// FixOutcome is the result of a mechanical line rewrite.
type FixOutcome struct {
	// OK reports whether a fix was produced. When false, Fixed holds the
	// unchanged original line and Explanation is NoFixExplanation.
	OK bool
	// Fixed is the replacement text. Empty with OK=true means delete the line.
	Fixed       string
	Explanation string
}

var fromImportRE = regexp.MustCompile(`^(\s*from\s+\S+\s+import\s+)(.+)$`)

// FixUnusedImport rewrites the import statement at lineNumber (1-indexed),
// dropping the members named in unused. Works on raw text only: it recognizes
// "from X import a, b" and "import a, b" shapes and declines anything else.
func FixUnusedImport(lines []string, lineNumber int, unused []string) (FixOutcome, error) {
	if lineNumber < 1 || lineNumber > len(lines) {
		return FixOutcome{}, fmt.Errorf("line %d out of range (have %d lines)", lineNumber, len(lines))
	}
	original := lines[lineNumber-1]

	unusedSet := make(map[string]struct{}, len(unused))
	for _, name := range unused {
		unusedSet[name] = struct{}{}
	}

	if m := fromImportRE.FindStringSubmatch(original); m != nil {
		prefix, members := m[1], splitMembers(m[2])
		kept := keepMembers(members, unusedSet)
		if len(kept) == 0 {
			return FixOutcome{OK: true, Fixed: "", Explanation: "removed entire import (all imports unused)"}, nil
		}
		return FixOutcome{
			OK:          true,
			Fixed:       prefix + strings.Join(kept, ", "),
			Explanation: "removed unused import(s): " + strings.Join(unused, ", "),
		}, nil
	}

	if trimmed := strings.TrimSpace(original); strings.HasPrefix(trimmed, "import ") {
		members := splitMembers(strings.TrimPrefix(trimmed, "import "))
		kept := keepMembers(members, unusedSet)
		if len(kept) == 0 {
			return FixOutcome{OK: true, Fixed: "", Explanation: "removed entire import (all imports unused)"}, nil
		}
		indent := original[:len(original)-len(strings.TrimLeft(original, " \t"))]
		return FixOutcome{
			OK:          true,
			Fixed:       indent + "import " + strings.Join(kept, ", "),
			Explanation: "removed unused import(s): " + strings.Join(unused, ", "),
		}, nil
	}

	return FixOutcome{OK: false, Fixed: original, Explanation: NoFixExplanation}, nil
}

func splitMembers(s string) []string {
	parts := strings.Split(s, ",")
	members := make([]string, 0, len(parts))
	for _, p := range parts {
		members = append(members, strings.TrimSpace(p))
	}
	return members
}

func keepMembers(members []string, unused map[string]struct{}) []string {
	kept := make([]string, 0, len(members))
	for _, m := range members {
		if _, drop := unused[m]; !drop {
			kept = append(kept, m)
		}
	}
	return kept
}

// importScanWindow bounds how far past the file preamble the relocation scan
// looks for an existing import block.
const importScanWindow = 50

// FixImportLocation relocates the in-body import at lineNumber (1-indexed) to
// module scope. The insertion point skips the interpreter hint and encoding
// marker, then a leading docstring, then blank lines, then joins the end of
// the existing top-of-file import block when one is found within the scan
// window.
func FixImportLocation(lines []string, lineNumber int) ([]string, string, error) {
	if lineNumber < 1 || lineNumber > len(lines) {
		return nil, "", fmt.Errorf("line %d out of range (have %d lines)", lineNumber, len(lines))
	}
	importLine := strings.TrimSpace(lines[lineNumber-1])

	insertIdx := 0
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "#!") || strings.Contains(stripped, "coding:") || strings.Contains(stripped, "encoding:") {
			insertIdx = i + 1
		} else {
			break
		}
	}

	// Skip a module docstring delimited by either triple-quote style,
	// using the first closing delimiter found.
	if insertIdx < len(lines) {
		stripped := strings.TrimSpace(lines[insertIdx])
		if strings.HasPrefix(stripped, `"""`) || strings.HasPrefix(stripped, "'''") {
			quote := `"""`
			if !strings.Contains(lines[insertIdx], `"""`) {
				quote = "'''"
			}
			for i := insertIdx + 1; i < len(lines); i++ {
				if strings.Contains(lines[i], quote) {
					insertIdx = i + 1
					break
				}
			}
		}
	}

	for insertIdx < len(lines) && strings.TrimSpace(lines[insertIdx]) == "" {
		insertIdx++
	}

	// Last contiguous import within the window; stop at the first line of
	// real code so the import joins the block instead of sinking below it.
	lastImportIdx := -1
	limit := insertIdx + importScanWindow
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := insertIdx; i < limit; i++ {
		stripped := strings.TrimSpace(lines[i])
		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			lastImportIdx = i
		} else if stripped != "" && !strings.HasPrefix(stripped, "#") {
			break
		}
	}

	modified := make([]string, 0, len(lines))
	modified = append(modified, lines[:lineNumber-1]...)
	modified = append(modified, lines[lineNumber:]...)

	insertPos := insertIdx
	if lastImportIdx >= 0 {
		insertPos = lastImportIdx + 1
	}
	if insertPos > len(modified) {
		insertPos = len(modified)
	}
	modified = append(modified[:insertPos], append([]string{importLine}, modified[insertPos:]...)...)

	explanation := fmt.Sprintf("moved import from line %d to module level (line %d)", lineNumber, insertPos+1)
	return modified, explanation, nil
}
