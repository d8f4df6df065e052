package gast

import (
	"github.com/leapstack-labs/gast/pkg/token"
)

// Node is one vertex of a generic AST.
//
// Nodes are produced by a Builder (or FromExchange) and are read-only for
// consumers: attributes are reachable through accessor methods only, and a
// closed node never changes again. Ownership flows from parent to child; the
// parent link is kept for validation and navigation.
type Node struct {
	kind         Kind
	name         string
	declaredType string
	value        string
	elseIf       bool
	span         token.Span
	children     []*Node

	parent *Node
	closed bool
}

// Kind returns the node's variant.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the declared or referenced name, if any.
func (n *Node) Name() string { return n.name }

// DeclaredType returns the raw type text as written in source.
func (n *Node) DeclaredType() string { return n.declaredType }

// Value returns verbatim literal text for constants and condition text for
// if statements and loops.
func (n *Node) Value() string { return n.value }

// ElseIf reports whether an IfStatement is a chained else-if branch.
func (n *Node) ElseIf() bool { return n.elseIf }

// Span returns the source range covered by the node.
func (n *Node) Span() token.Span { return n.span }

// Parent returns the owning node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Closed reports whether the node has been finalized.
func (n *Node) Closed() bool { return n.closed }

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildrenOfKind returns the direct children of kind k in source order.
func (n *Node) ChildrenOfKind(k Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == k {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child of kind k, or nil.
func (n *Node) FirstChildOfKind(k Kind) *Node {
	for _, c := range n.children {
		if c.kind == k {
			return c
		}
	}
	return nil
}

// Receiver returns the receiver of a MethodCall or AttributeAccess: the first
// child, or nil when n has none.
func (n *Node) Receiver() *Node {
	if (n.kind != KindMethodCall && n.kind != KindAttributeAccess) || len(n.children) == 0 {
		return nil
	}
	if n.kind == KindMethodCall && n.children[0].kind == KindFunctionCall && len(n.children) == 1 {
		return nil
	}
	return n.children[0]
}

// Callee returns the FunctionCall invoked by a MethodCall.
func (n *Node) Callee() *Node {
	if n.kind != KindMethodCall {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].kind == KindFunctionCall {
			return n.children[i]
		}
	}
	return nil
}

// Arguments returns the argument nodes of a call site. For a MethodCall the
// arguments live under the callee.
func (n *Node) Arguments() []*Node {
	switch n.kind {
	case KindFunctionCall:
		return n.Children()
	case KindMethodCall:
		if c := n.Callee(); c != nil {
			return c.Children()
		}
	}
	return nil
}

// Condition returns the condition expression of an IfStatement or loop, if
// one was recorded as the first Expression child.
func (n *Node) Condition() *Node {
	if n.kind != KindIfStatement && n.kind != KindConditionalStatement {
		return nil
	}
	if len(n.children) > 0 && n.children[0].kind == KindExpression {
		return n.children[0]
	}
	return nil
}

// ElseIfs returns the chained else-if branches of an IfStatement head.
func (n *Node) ElseIfs() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == KindIfStatement && c.elseIf {
			out = append(out, c)
		}
	}
	return out
}

// Else returns the else branch of an IfStatement head, or nil.
func (n *Node) Else() *Node {
	return n.FirstChildOfKind(KindElseStatement)
}

// Body returns the children of an IfStatement, loop or else-if branch that
// are neither its condition nor chained branches.
func (n *Node) Body() []*Node {
	var out []*Node
	for i, c := range n.children {
		if i == 0 && c == n.Condition() {
			continue
		}
		if (c.kind == KindIfStatement && c.elseIf) || c.kind == KindElseStatement {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (n *Node) appendChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

// finalize completes the span from the last child and marks n immutable.
func (n *Node) finalize() {
	if len(n.children) > 0 {
		n.span = n.span.Extend(n.children[len(n.children)-1].span)
	}
	n.closed = true
}
