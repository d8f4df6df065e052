package cst

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/gast/pkg/token"
)

// SyntaxError reports malformed input found by the parser. It is distinct
// from builder contract violations, which point at adapter bugs.
type SyntaxError struct {
	File    string
	Pos     token.Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error at line %d, column %d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Message)
}

// Parse parses src with lang. The returned tree must be closed by the caller.
func Parse(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse: no tree produced")
	}
	return tree, nil
}

// IsErrorNode reports whether n is a parser error or a token the parser had
// to insert.
func IsErrorNode(n *sitter.Node) bool {
	return n.Type() == "ERROR" || n.IsMissing()
}

// FirstSyntaxError returns the first ERROR or MISSING node under root in
// source order, or nil if the tree parsed cleanly.
func FirstSyntaxError(root *sitter.Node, src []byte, file string) *SyntaxError {
	if root == nil || !root.HasError() {
		return nil
	}
	found := findError(root)
	if found == nil {
		return &SyntaxError{File: file, Pos: SpanOf(root).Start, Message: "unparseable input"}
	}
	msg := fmt.Sprintf("unexpected %q", truncate(found.Content(src), 40))
	if found.IsMissing() {
		msg = fmt.Sprintf("missing %s", found.Type())
	}
	return &SyntaxError{File: file, Pos: SpanOf(found).Start, Message: msg}
}

func findError(n *sitter.Node) *sitter.Node {
	if IsErrorNode(n) {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
