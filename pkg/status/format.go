package status

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/walteh/datepatch/pkg/text"
)

// Formatter defines how patch results should be formatted
type Formatter interface {
	// FormatTargetResult formats a one-line summary for a patched file
	FormatTargetResult(path string, status FileStatus, changedRules, totalRules int, dryRun bool) string

	// FormatRuleTable formats per-rule results as a table
	FormatRuleTable(rules []text.RuleResult) (string, error)

	// FormatDiff formats the line changes between before and after
	FormatDiff(path string, before, after []byte) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// RuleOutcome describes what a rule did in one word or two
func RuleOutcome(r text.RuleResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Changed:
		return "changed"
	case r.Matches > 0:
		return "unchanged"
	default:
		return "no match"
	}
}

// FormatTargetResult formats a file summary with emojis
func (f *DefaultFormatter) FormatTargetResult(path string, status FileStatus, changedRules, totalRules int, dryRun bool) string {
	switch {
	case status == StatusModified && dryRun:
		return fmt.Sprintf("📝 Would modify %s (%d/%d rules changed content)", path, changedRules, totalRules)
	case status == StatusModified:
		return fmt.Sprintf("📝 Modified %s (%d/%d rules changed content)", path, changedRules, totalRules)
	default:
		return fmt.Sprintf("👍 Unchanged %s", path)
	}
}

// FormatRuleTable renders rule results with pterm
func (f *DefaultFormatter) FormatRuleTable(rules []text.RuleResult) (string, error) {
	data := pterm.TableData{{"Rule", "Matches", "Result"}}
	for _, r := range rules {
		data = append(data, []string{r.Name, strconv.Itoa(r.Matches), RuleOutcome(r)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// FormatDiff renders a line diff. Unchanged runs are collapsed to a count.
func (f *DefaultFormatter) FormatDiff(path string, before, after []byte) string {
	if string(before) == string(after) {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)
	for _, d := range diffs {
		chunk := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(color.New(color.Faint).Sprintf("@@ %d unchanged @@", len(chunk)))
			sb.WriteString("\n")
		case diffmatchpatch.DiffDelete:
			for _, line := range chunk {
				sb.WriteString(color.RedString("-%s", line))
				sb.WriteString("\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range chunk {
				sb.WriteString(color.GreenString("+%s", line))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
