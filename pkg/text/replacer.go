package text

import (
	"context"
	"io"
)

// RuleKind selects how a rule's pattern is interpreted
type RuleKind string

const (
	// KindLiteral matches the pattern as exact text
	KindLiteral RuleKind = "literal"

	// KindRegex matches the pattern as an RE2 regular expression
	KindRegex RuleKind = "regex"

	// KindBlock matches the pattern as a regular expression that must end
	// with "{". The match is extended through the brace closing that block
	// and one directly following ";", so nested braces stay balanced.
	KindBlock RuleKind = "block"
)

// ReplacementRule defines a single text replacement operation
type ReplacementRule struct {
	// Name identifies the rule in logs and reports
	Name string

	// Kind is literal, regex or block, empty means literal
	Kind RuleKind

	// Pattern is the text or expression to search for
	Pattern string

	// Replacement is the replacement text. For regex and block rules it is a template
	// where $1 or ${name} expand to submatches and $$ is a literal dollar.
	Replacement string

	// DotAll lets . match newlines in regex and block patterns
	DotAll bool

	// FileFilterGlob restricts the rule to paths matching a doublestar glob
	FileFilterGlob string
}

// RuleResult describes what a single rule did to the buffer
type RuleResult struct {
	// Name is the rule name, or "rule N" for unnamed rules
	Name string

	// Matches is the number of non-overlapping matches found
	Matches int

	// Changed is true when the rule altered the buffer
	Changed bool

	// Skipped is true when the path did not match the rule's glob
	Skipped bool
}

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates the final content differs from the original
	WasModified bool

	// ReplacementCount is the number of matches of rules that changed the buffer
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte

	// Rules holds one entry per rule, in application order
	Rules []RuleResult
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies the rules in order to the content read from r.
	// path is only used to evaluate each rule's FileFilterGlob.
	ReplaceText(ctx context.Context, path string, r io.Reader, rules []ReplacementRule) (*ReplacementResult, error)

	// ValidateRules checks that all rules are valid
	ValidateRules(rules []ReplacementRule) error
}
