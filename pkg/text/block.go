package text

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"gitlab.com/tozd/go/errors"
)

// replaceBlocks replaces every header match together with the brace block the
// header opens, plus a directly following semicolon.
func replaceBlocks(ctx context.Context, content string, re *regexp.Regexp, template string) (string, int, error) {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, 0, nil
	}

	closer, err := newBlockCloser(ctx, content)
	if err != nil {
		return "", 0, err
	}
	defer closer.Close()

	var sb strings.Builder
	last, count := 0, 0
	for _, m := range matches {
		start, open := m[0], m[1]-1
		if start < last {
			// inside a block that was already replaced
			continue
		}
		if open < start || content[open] != '{' {
			return "", 0, errors.Errorf("block header at offset %d must end with an opening brace", start)
		}
		end, ok := closer.end(open)
		if !ok {
			return "", 0, errors.Errorf("no closing brace for block at offset %d", start)
		}
		if end < len(content) && content[end] == ';' {
			end++
		}

		sb.WriteString(content[last:start])
		sb.Write(re.ExpandString(nil, template, content, m))
		last = end
		count++
	}
	sb.WriteString(content[last:])

	return sb.String(), count, nil
}

// blockCloser finds the brace closing a block. The content is parsed as
// JavaScript with tree-sitter; braces the syntax tree cannot place cleanly
// fall back to a lexical scan.
type blockCloser struct {
	content string
	parser  *sitter.Parser
	tree    *sitter.Tree
}

func newBlockCloser(ctx context.Context, content string) (*blockCloser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		parser.Close()
		return nil, errors.Errorf("parsing javascript: %w", err)
	}

	return &blockCloser{content: content, parser: parser, tree: tree}, nil
}

// Close releases the parser and tree
func (b *blockCloser) Close() {
	b.tree.Close()
	b.parser.Close()
}

// end returns the offset just past the brace matching the one at open
func (b *blockCloser) end(open int) (int, bool) {
	block := braceOwner(b.tree.RootNode(), uint32(open))
	if block != nil && !block.HasError() && block.StartByte() == uint32(open) {
		end := int(block.EndByte())
		if end > open+1 && b.content[end-1] == '}' {
			return end, true
		}
	}
	return scanBlockEnd(b.content, open)
}

// braceOwner returns the node whose opening "{" token sits at open
func braceOwner(n *sitter.Node, open uint32) *sitter.Node {
	if n == nil || n.StartByte() > open || n.EndByte() <= open {
		return nil
	}
	if n.Type() == "{" && n.StartByte() == open {
		return n.Parent()
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := braceOwner(n.Child(i), open); found != nil {
			return found
		}
	}
	return nil
}

// scanBlockEnd counts braces from open, skipping quoted literals and comments
func scanBlockEnd(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '\'', '"', '`':
			i = skipQuoted(s, i, c)
		case '/':
			if i+1 >= len(s) {
				break
			}
			switch s[i+1] {
			case '/':
				nl := strings.IndexByte(s[i:], '\n')
				if nl < 0 {
					return 0, false
				}
				i += nl
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return 0, false
				}
				i += end + 3
			}
		}
	}
	return 0, false
}

// skipQuoted returns the offset of the quote closing the literal opened at i
func skipQuoted(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		}
	}
	return len(s)
}
