package kiro

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxError is an ERROR or MISSING node found in a syntax tree.
// Line and Column are 0-based; Column counts bytes.
type SyntaxError struct {
	Line    uint   `json:"line"`
	Column  uint   `json:"column"`
	Length  int    `json:"length"`
	Message string `json:"message"`
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line+1, e.Column+1, e.Message)
}

// SyntaxErrors is every syntax error in one file.
type SyntaxErrors struct {
	Filename string
	Errors   []SyntaxError
}

func (e *SyntaxErrors) Error() string {
	var b strings.Builder
	for i, se := range e.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.Filename != "" {
			b.WriteString(e.Filename)
			b.WriteByte(':')
		}
		b.WriteString(se.Error())
	}
	return b.String()
}

// Check parses source and returns its syntax errors in document order.
// A nil slice means the source parsed cleanly.
func (g *Grammar) Check(ctx context.Context, source []byte) ([]SyntaxError, error) {
	tree, err := g.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var errs []SyntaxError
	collectSyntaxErrors(root, source, &errs)
	return errs, nil
}

func collectSyntaxErrors(node *tree_sitter.Node, source []byte, errs *[]SyntaxError) {
	if node == nil {
		return
	}

	if node.IsMissing() {
		start := node.StartPosition()
		*errs = append(*errs, SyntaxError{
			Line:    start.Row,
			Column:  start.Column,
			Length:  1,
			Message: describeMissing(node.Kind()),
		})
		return
	}

	if node.IsError() {
		start := node.StartPosition()
		end := node.EndPosition()
		length := int(node.EndByte() - node.StartByte())
		if start.Row == end.Row {
			length = int(end.Column - start.Column)
		}
		*errs = append(*errs, SyntaxError{
			Line:    start.Row,
			Column:  start.Column,
			Length:  max(1, length),
			Message: describeUnexpected(node.Utf8Text(source)),
		})
		// the ERROR node already covers its children
		return
	}

	if !node.HasError() {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectSyntaxErrors(node.Child(i), source, errs)
	}
}

// describeMissing explains a MISSING node, which has the kind of the token
// the parser expected.
func describeMissing(kind string) string {
	switch kind {
	case ")", "]", "}":
		return fmt.Sprintf("missing closing '%s'", kind)
	case `"`:
		return "unterminated string literal"
	default:
		return fmt.Sprintf("missing '%s'", kind)
	}
}

const maxSnippet = 40

// describeUnexpected explains an ERROR node from the text it spans.
func describeUnexpected(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "unexpected end of input"
	}

	truncated := false
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
		truncated = true
	}
	if utf8.RuneCountInString(text) > maxSnippet {
		text = string([]rune(text)[:maxSnippet])
		truncated = true
	}
	if truncated {
		text += "..."
	}
	return fmt.Sprintf("unexpected '%s'", text)
}
