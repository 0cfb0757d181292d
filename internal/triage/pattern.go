package triage

import "regexp"

// patternFamily is an ordered list of case-insensitive expressions that all
// map to the same Pattern. A match anywhere in the comment body qualifies.
type patternFamily struct {
	pattern Pattern
	regexps []*regexp.Regexp
}

// families are checked in fixed priority order; the first family with any
// matching expression wins and later families are not consulted.
var families = []patternFamily{
	{PatternUnusedImport, compileAll(
		`import.*(?:not used|unused|never used)`,
		`unused import`,
		`remove.*unused.*import`,
	)},
	{PatternImportLocation, compileAll(
		`import.*should be (?:moved to|at) the top`,
		`move.*import.*to (?:top|module level)`,
		`pep\s*8.*import`,
		`local import.*should be`,
	)},
	{PatternDuplicateImport, compileAll(
		`duplicate import`,
		`import.*already imported`,
		`redundant import`,
	)},
	{PatternMissingTypeHint, compileAll(
		`add type hint`,
		`missing type annotation`,
		`should have.*type`,
	)},
	{PatternMissingDocstring, compileAll(
		`add docstring`,
		`missing docstring`,
		`documentation.*missing`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(`(?i)`+e))
	}
	return res
}

// IdentifyPattern maps a comment body to at most one Pattern.
// Returns PatternNone when no family matches; that is not an error.
func IdentifyPattern(body string) Pattern {
	for _, fam := range families {
		for _, re := range fam.regexps {
			if re.MatchString(body) {
				return fam.pattern
			}
		}
	}
	return PatternNone
}

var (
	quotedNameRE = regexp.MustCompile("['\"`]([A-Za-z_][A-Za-z0-9_]*)['\"`]")
	codeTagRE    = regexp.MustCompile(`<code>([A-Za-z_][A-Za-z0-9_]*)</code>`)
)

// ExtractNames returns the de-duplicated union of identifiers the comment
// references in quotes ('x', "x", `x`) or <code> tags. Quoted and tagged
// finds merge without precedence; order is not guaranteed.
func ExtractNames(body string) []string {
	seen := make(map[string]struct{})
	for _, m := range quotedNameRE.FindAllStringSubmatch(body, -1) {
		seen[m[1]] = struct{}{}
	}
	for _, m := range codeTagRE.FindAllStringSubmatch(body, -1) {
		seen[m[1]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}
