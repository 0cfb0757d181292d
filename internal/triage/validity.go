package triage

import "strings"

// AnalyzeValidity heuristically decides whether the concern raised in a
// comment is already addressed in the current code snippet. It is keyword
// driven, deliberately independent of the regex classifier, and inspects
// both the comment and the code. Rules fire in order; the first match wins.
// Unrecognized comment shapes degrade to an uncertain verdict rather than
// failing, so the triage pipeline never blocks here.
func AnalyzeValidity(commentBody, codeSnippet string) Validity {
	comment := strings.ToLower(commentBody)
	code := strings.ToLower(codeSnippet)

	// Rule 1: null/undefined concerns vs. a conditional guard in the code.
	if strings.Contains(comment, "null") || strings.Contains(comment, "undefined") {
		hasNullCheck := strings.Contains(code, "if") &&
			(strings.Contains(code, "null") ||
				strings.Contains(code, "undefined") ||
				strings.Contains(codeSnippet, "!=") ||
				strings.Contains(code, "is not none"))
		if hasNullCheck {
			return Validity{
				IsValid:         false,
				Status:          StatusAlreadyFixed,
				Confidence:      0.7,
				Reasoning:       "Code appears to have null/undefined check present",
				SuggestedAction: "Verify the fix is correct and resolve thread",
			}
		}
		return Validity{
			IsValid:         true,
			Status:          StatusNeedsFix,
			Confidence:      0.8,
			Reasoning:       "No null/undefined check found in code",
			SuggestedAction: "Add appropriate null check as suggested",
		}
	}

	// Rule 2: error/exception concerns vs. handling keywords.
	if strings.Contains(comment, "error") || strings.Contains(comment, "exception") {
		hasHandling := strings.Contains(code, "try") ||
			strings.Contains(code, "catch") ||
			strings.Contains(code, "except") ||
			strings.Contains(code, "raise")
		if hasHandling {
			return Validity{
				IsValid:         false,
				Status:          StatusAlreadyFixed,
				Confidence:      0.6,
				Reasoning:       "Error handling appears to be present",
				SuggestedAction: "Review error handling and resolve if adequate",
			}
		}
		return Validity{
			IsValid:         true,
			Status:          StatusNeedsFix,
			Confidence:      0.7,
			Reasoning:       "No error handling found",
			SuggestedAction: "Add error handling as suggested",
		}
	}

	// Rule 3: type concerns vs. annotation markers. Only the present branch
	// is decisive; absence falls through to the default.
	if strings.Contains(comment, "type") {
		hasTypes := strings.Contains(codeSnippet, ":") ||
			strings.Contains(code, "type") ||
			strings.Contains(codeSnippet, "->")
		if hasTypes {
			return Validity{
				IsValid:         false,
				Status:          StatusAlreadyFixed,
				Confidence:      0.6,
				Reasoning:       "Type annotations appear to be present",
				SuggestedAction: "Verify types and resolve thread",
			}
		}
	}

	return Validity{
		IsValid:         false,
		Status:          StatusUncertain,
		Confidence:      0.3,
		Reasoning:       "Unable to automatically determine validity. Manual review recommended.",
		SuggestedAction: "Review comment and code manually, or use a deeper analysis",
	}
}
