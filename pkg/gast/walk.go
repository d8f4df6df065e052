package gast

import "iter"

// Walk traverses a tree depth-first in pre-order and calls fn for each node.
// If fn returns false, the children of that node are skipped.
func Walk(n *Node, fn func(n *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// All returns a pre-order iterator over n and its descendants. Breaking out
// of the range loop stops the traversal.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n == nil {
			return
		}
		stack := []*Node{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			for i := len(cur.children) - 1; i >= 0; i-- {
				stack = append(stack, cur.children[i])
			}
		}
	}
}

// Find returns the first node in pre-order for which pred holds.
func Find(n *Node, pred func(*Node) bool) *Node {
	for c := range n.All() {
		if pred(c) {
			return c
		}
	}
	return nil
}

// FindAll returns every node in pre-order for which pred holds.
func FindAll(n *Node, pred func(*Node) bool) []*Node {
	var out []*Node
	for c := range n.All() {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// OfKind is a predicate for Find and FindAll.
func OfKind(k Kind) func(*Node) bool {
	return func(n *Node) bool { return n.kind == k }
}
