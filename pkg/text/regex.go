package text

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// RegexTextReplacer implements TextReplacer with literal, regular expression and block rules
type RegexTextReplacer struct{}

// NewRegexTextReplacer creates a new RegexTextReplacer
func NewRegexTextReplacer() *RegexTextReplacer {
	return &RegexTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *RegexTextReplacer) ReplaceText(ctx context.Context, path string, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	if err := r.ValidateRules(rules); err != nil {
		return nil, errors.Errorf("validating rules: %w", err)
	}

	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		Rules:           make([]RuleResult, 0, len(rules)),
	}

	currentContent := string(originalContent)
	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("applying rule %q: %w", ruleName(i, rule), err)
		}

		ruleResult := RuleResult{Name: ruleName(i, rule)}

		ok, err := matchesPath(rule, path)
		if err != nil {
			return nil, errors.Errorf("matching rule %q against %s: %w", ruleResult.Name, path, err)
		}
		if !ok {
			ruleResult.Skipped = true
			result.Rules = append(result.Rules, ruleResult)
			continue
		}

		newContent, matches, err := applyRule(ctx, currentContent, rule)
		if err != nil {
			return nil, errors.Errorf("applying rule %q: %w", ruleResult.Name, err)
		}

		ruleResult.Matches = matches
		if newContent != currentContent {
			ruleResult.Changed = true
			result.ReplacementCount += matches
		}
		result.Rules = append(result.Rules, ruleResult)

		currentContent = newContent
	}

	result.ModifiedContent = []byte(currentContent)
	result.WasModified = currentContent != string(originalContent)
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *RegexTextReplacer) ValidateRules(rules []ReplacementRule) error {
	names := make(map[string]int, len(rules))
	for i, rule := range rules {
		if rule.Pattern == "" {
			return errors.Errorf("rule %d: pattern is required", i)
		}
		switch rule.Kind {
		case "", KindLiteral:
			if rule.DotAll {
				return errors.Errorf("rule %d: dot_all only applies to regex and block rules", i)
			}
		case KindRegex, KindBlock:
			if _, err := compile(rule); err != nil {
				return errors.Errorf("rule %d: %w", i, err)
			}
		default:
			return errors.Errorf("rule %d: unknown kind %q", i, rule.Kind)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(rule.FileFilterGlob) {
			return errors.Errorf("rule %d: invalid file_filter_glob %q", i, rule.FileFilterGlob)
		}
		if rule.Name != "" {
			if prev, ok := names[rule.Name]; ok {
				return errors.Errorf("rule %d: name %q already used by rule %d", i, rule.Name, prev)
			}
			names[rule.Name] = i
		}
	}
	return nil
}

func applyRule(ctx context.Context, content string, rule ReplacementRule) (string, int, error) {
	switch rule.Kind {
	case KindBlock:
		re, err := compile(rule)
		if err != nil {
			return "", 0, err
		}
		return replaceBlocks(ctx, content, re, rule.Replacement)
	case KindRegex:
		re, err := compile(rule)
		if err != nil {
			return "", 0, err
		}
		matches := len(re.FindAllStringIndex(content, -1))
		if matches == 0 {
			return content, 0, nil
		}
		return re.ReplaceAllString(content, rule.Replacement), matches, nil
	}

	matches := strings.Count(content, rule.Pattern)
	if matches == 0 {
		return content, 0, nil
	}
	return strings.ReplaceAll(content, rule.Pattern, rule.Replacement), matches, nil
}

func compile(rule ReplacementRule) (*regexp.Regexp, error) {
	expr := rule.Pattern
	if rule.DotAll {
		expr = "(?s)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("compiling pattern: %w", err)
	}
	return re, nil
}

func matchesPath(rule ReplacementRule, path string) (bool, error) {
	if rule.FileFilterGlob == "" {
		return true, nil
	}
	return doublestar.Match(rule.FileFilterGlob, filepath.ToSlash(path))
}

func ruleName(i int, rule ReplacementRule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return fmt.Sprintf("rule %d", i)
}
