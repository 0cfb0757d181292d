package triage

// Pattern is a closed-set tag for a recognized comment-text issue type.
// Adding a pattern requires a detection family in pattern.go and, where a
// mechanical rewrite exists, a fix rule in fix.go.
type Pattern string

const (
	// PatternNone means no detection family matched the comment.
	PatternNone Pattern = ""
	// PatternUnusedImport flags an import whose members are never referenced.
	PatternUnusedImport Pattern = "unused_import"
	// PatternImportLocation flags an import declared inside a function body.
	PatternImportLocation Pattern = "import_location"
	// PatternDuplicateImport flags an import already present elsewhere.
	PatternDuplicateImport Pattern = "duplicate_import"
	// PatternMissingTypeHint flags a declaration without a type annotation.
	PatternMissingTypeHint Pattern = "missing_type_hint"
	// PatternMissingDocstring flags a declaration without documentation.
	PatternMissingDocstring Pattern = "missing_docstring"
)

// ValidityStatus is the assessment of whether a comment's concern still applies.
type ValidityStatus string

const (
	StatusNeedsFix     ValidityStatus = "needs_fix"
	StatusAlreadyFixed ValidityStatus = "already_fixed"
	StatusInvalid      ValidityStatus = "invalid"
	StatusUncertain    ValidityStatus = "uncertain"
)

// Priority ranks a comment for triage ordering.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank orders priorities for sorting; lower sorts first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Validity is the keyword-analyzer verdict on a single comment.
type Validity struct {
	IsValid         bool           `json:"is_valid"`
	Status          ValidityStatus `json:"status"`
	Confidence      float64        `json:"confidence"`
	Reasoning       string         `json:"reasoning"`
	SuggestedAction string         `json:"suggested_action"`
}

// SuggestedFix is a literal before/after text edit for a single line.
// Fixed is empty when the whole line should be deleted.
type SuggestedFix struct {
	Original    string `json:"original"`
	Fixed       string `json:"fixed"`
	Explanation string `json:"explanation"`
}

// Analysis combines pattern classification with fix generation for one comment.
type Analysis struct {
	Pattern         Pattern        `json:"pattern_detected,omitempty"`
	CanAutoFix      bool           `json:"can_auto_fix"`
	Confidence      float64        `json:"confidence"`
	Status          ValidityStatus `json:"status"`
	IsValid         bool           `json:"is_valid"`
	Reasoning       string         `json:"reasoning,omitempty"`
	SuggestedAction string         `json:"suggested_action,omitempty"`
	SuggestedFix    *SuggestedFix  `json:"suggested_fix,omitempty"`
	ReplyTemplate   string         `json:"reply_template,omitempty"`
}
