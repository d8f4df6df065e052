// Package cst drives grammar adapters from a tree-sitter concrete syntax
// tree. Walk visits every named node depth-first and reports it to a
// Listener as a strictly nested Enter/Exit pair.
package cst

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/gast/pkg/token"
)

// Event describes one named node of the concrete tree as it is entered or
// exited. It satisfies gast.SourceRef.
type Event struct {
	node  *sitter.Node
	field string
	depth int
	src   []byte
}

// NewEvent builds an event for n. Listeners use it to describe nodes they
// look at outside the walk, such as a call's receiver.
func NewEvent(n *sitter.Node, field string, depth int, src []byte) Event {
	return Event{node: n, field: field, depth: depth, src: src}
}

// Node returns the underlying tree-sitter node.
func (e Event) Node() *sitter.Node { return e.node }

// Type returns the grammar production name.
func (e Event) Type() string { return e.node.Type() }

// Field returns the field name the node occupies in its parent, or "".
func (e Event) Field() string { return e.field }

// Depth returns the nesting depth; the root is 0.
func (e Event) Depth() int { return e.depth }

// Source returns the full source the tree was parsed from.
func (e Event) Source() []byte { return e.src }

// Text returns the raw matched text.
func (e Event) Text() string { return e.node.Content(e.src) }

// Span returns the node's source range.
func (e Event) Span() token.Span { return SpanOf(e.node) }

// Parent returns the parent node, or nil for the root.
func (e Event) Parent() *sitter.Node { return e.node.Parent() }

// ParentType returns the parent's production name, or "".
func (e Event) ParentType() string {
	if p := e.node.Parent(); p != nil {
		return p.Type()
	}
	return ""
}

// Child returns the child stored under field, or nil.
func (e Event) Child(field string) *sitter.Node {
	return e.node.ChildByFieldName(field)
}

// ChildText returns the text of the child stored under field, or "".
func (e Event) ChildText(field string) string {
	if c := e.node.ChildByFieldName(field); c != nil {
		return c.Content(e.src)
	}
	return ""
}

// Of returns an event for another node of the same tree, e.g. a child the
// listener inspects ahead of the walk.
func (e Event) Of(n *sitter.Node, field string) Event {
	return Event{node: n, field: field, depth: e.depth + 1, src: e.src}
}

// SpanOf converts a tree-sitter node range into a token.Span with 1-based
// lines and columns.
func SpanOf(n *sitter.Node) token.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return token.Span{
		Start: token.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1, Offset: int(n.StartByte())},
		End:   token.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1, Offset: int(n.EndByte())},
	}
}
