package triage

import (
	"strconv"
	"strings"
)

// Analyze runs the pattern classifier over a comment and, when the matched
// pattern has a mechanical rewrite, attempts fix generation against the code
// snippet. lineNumber is the line the comment is anchored to in the snippet's
// numbering. The snippet is the rendered window from the host (marker, line
// number, pipe, code).
func Analyze(commentBody, codeSnippet string, lineNumber int) Analysis {
	pattern := IdentifyPattern(commentBody)
	if pattern == PatternNone {
		return Analysis{
			Pattern:    PatternNone,
			CanAutoFix: false,
			Confidence: 0.3,
			Status:     StatusUncertain,
		}
	}

	switch pattern {
	case PatternUnusedImport:
		return analyzeUnusedImport(commentBody, codeSnippet, lineNumber)
	case PatternImportLocation:
		return analyzeImportLocation(codeSnippet, lineNumber)
	case PatternDuplicateImport:
		return analyzeDuplicateImport()
	}

	// Type-hint and docstring findings are detected but have no line-level
	// rewrite; they go back to the caller for judgment.
	return Analysis{
		Pattern:    pattern,
		CanAutoFix: false,
		Confidence: 0.6,
		Status:     StatusUncertain,
	}
}

func analyzeUnusedImport(commentBody, codeSnippet string, lineNumber int) Analysis {
	names := ExtractNames(commentBody)
	target := SnippetLine(codeSnippet, lineNumber)

	a := Analysis{
		Pattern:         PatternUnusedImport,
		Status:          StatusNeedsFix,
		IsValid:         true,
		Confidence:      0.70,
		Reasoning:       "Unused import detected: " + strings.Join(names, ", "),
		SuggestedAction: "Remove unused imports",
		ReplyTemplate:   ReplyUnusedImport(names, false),
	}

	if target != "" && len(names) > 0 {
		outcome, err := FixUnusedImport([]string{target}, 1, names)
		if err == nil && outcome.OK {
			a.CanAutoFix = true
			a.Confidence = 0.85
			a.SuggestedFix = &SuggestedFix{
				Original:    strings.TrimSpace(target),
				Fixed:       strings.TrimSpace(outcome.Fixed),
				Explanation: outcome.Explanation,
			}
		}
	}

	return a
}

func analyzeImportLocation(codeSnippet string, lineNumber int) Analysis {
	// Sanity check that the snippet actually contains an import statement
	// before claiming the relocation is mechanical.
	if !strings.Contains(codeSnippet, "import ") && !strings.Contains(codeSnippet, "from ") {
		return Analysis{
			Pattern:    PatternImportLocation,
			CanAutoFix: false,
			Confidence: 0.5,
			Status:     StatusUncertain,
		}
	}

	return Analysis{
		Pattern:         PatternImportLocation,
		CanAutoFix:      true,
		Confidence:      0.80,
		Status:          StatusNeedsFix,
		IsValid:         true,
		Reasoning:       "Import statement found in method/function body. Should be at module level per PEP 8.",
		SuggestedAction: "Move import to top of file",
		ReplyTemplate:   ReplyImportLocation(lineNumber, 0, false),
	}
}

// analyzeDuplicateImport is detection-only: which duplicate to keep is caller
// judgment, so no line rewrite is attempted here.
func analyzeDuplicateImport() Analysis {
	return Analysis{
		Pattern:         PatternDuplicateImport,
		CanAutoFix:      true,
		Confidence:      0.85,
		Status:          StatusNeedsFix,
		IsValid:         true,
		Reasoning:       "Duplicate import detected. Should be consolidated.",
		SuggestedAction: "Remove duplicate import",
		ReplyTemplate:   ReplyDuplicateImport(false),
	}
}

// SnippetLine extracts the raw code for lineNumber from a rendered snippet
// whose lines carry a "NNNN | code" gutter. Returns "" when the line is not
// present in the window.
func SnippetLine(snippet string, lineNumber int) string {
	if lineNumber <= 0 {
		return ""
	}
	needle := " | "
	for _, line := range strings.Split(snippet, "\n") {
		gutter, code, ok := strings.Cut(line, needle)
		if !ok {
			continue
		}
		fields := strings.Fields(gutter)
		if len(fields) == 0 {
			continue
		}
		if fields[len(fields)-1] == strconv.Itoa(lineNumber) {
			return code
		}
	}
	return ""
}
