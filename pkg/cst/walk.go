package cst

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/gast/pkg/token"
)

// Listener receives the enter/exit stream of a walk. Err is consulted after
// every event; a non-nil value stops the walk.
type Listener interface {
	Enter(ev Event)
	Exit(ev Event)
	Err() error
}

// Phase tells whether an event entered or exited a node.
type Phase string

// Walk phases.
const (
	PhaseEnter Phase = "enter"
	PhaseExit  Phase = "exit"
)

// WalkError reports the production being processed when a listener failed.
type WalkError struct {
	Phase      Phase
	Production string
	Pos        token.Position
	Err        error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("%s %s at line %d, column %d: %v", e.Phase, e.Production, e.Pos.Line, e.Pos.Column, e.Err)
}

func (e *WalkError) Unwrap() error { return e.Err }

// Walk visits the named nodes of tree in depth-first order. Every node is
// entered before any of its descendants and exited after all of them.
// Anonymous nodes (punctuation, keywords) produce no events.
func Walk(tree *sitter.Tree, src []byte, l Listener) error {
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	return WalkNode(root, src, l)
}

// WalkNode walks the subtree rooted at n.
func WalkNode(n *sitter.Node, src []byte, l Listener) error {
	c := sitter.NewTreeCursor(n)
	defer c.Close()

	depth := 0
	emit := func(phase Phase) error {
		cur := c.CurrentNode()
		if !cur.IsNamed() {
			return nil
		}
		ev := Event{node: cur, field: c.CurrentFieldName(), depth: depth, src: src}
		if phase == PhaseEnter {
			l.Enter(ev)
		} else {
			l.Exit(ev)
		}
		if err := l.Err(); err != nil {
			return &WalkError{Phase: phase, Production: cur.Type(), Pos: ev.Span().Start, Err: err}
		}
		return nil
	}

	for {
		if err := emit(PhaseEnter); err != nil {
			return err
		}
		if c.GoToFirstChild() {
			depth++
			continue
		}
		// Unwind: exit the current node, then move to its next sibling or
		// keep exiting ancestors.
		for {
			if err := emit(PhaseExit); err != nil {
				return err
			}
			if depth > 0 && c.GoToNextSibling() {
				break
			}
			if depth == 0 || !c.GoToParent() {
				return nil
			}
			depth--
		}
	}
}
