package gast

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/gast/pkg/token"
)

// Exchange is the serializable shape of a node and its subtree.
type Exchange struct {
	Kind         string     `json:"kind" yaml:"kind"`
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	DeclaredType string     `json:"declaredType,omitempty" yaml:"declaredType,omitempty"`
	Value        string     `json:"value,omitempty" yaml:"value,omitempty"`
	ElseIf       bool       `json:"elseIf,omitempty" yaml:"elseIf,omitempty"`
	Span         token.Span `json:"span" yaml:"span"`
	Children     []Exchange `json:"children" yaml:"children,omitempty"`
}

// Exchange converts the subtree rooted at n.
func (n *Node) Exchange() Exchange {
	e := Exchange{
		Kind:         string(n.kind),
		Name:         n.name,
		DeclaredType: n.declaredType,
		Value:        n.value,
		ElseIf:       n.elseIf,
		Span:         n.span,
		Children:     make([]Exchange, 0, len(n.children)),
	}
	for _, c := range n.children {
		e.Children = append(e.Children, c.Exchange())
	}
	return e
}

// MarshalJSON encodes the subtree in its exchange shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Exchange())
}

// FromExchange rebuilds a finalized tree from its exchange shape.
func FromExchange(e Exchange) (*Node, error) {
	return fromExchange(e, nil, "")
}

func fromExchange(e Exchange, parent *Node, path string) (*Node, error) {
	kind, err := ParseKind(e.Kind)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", pathOrRoot(path), err)
	}
	if kind.IsLeaf() && len(e.Children) > 0 {
		return nil, fmt.Errorf("node %s: %s cannot have children", pathOrRoot(path), kind)
	}
	if e.ElseIf && kind != KindIfStatement {
		return nil, fmt.Errorf("node %s: elseIf set on %s", pathOrRoot(path), kind)
	}
	n := &Node{
		kind:         kind,
		name:         e.Name,
		declaredType: e.DeclaredType,
		value:        e.Value,
		elseIf:       e.ElseIf,
		span:         e.Span,
		parent:       parent,
		closed:       true,
	}
	if len(e.Children) > 0 {
		n.children = make([]*Node, 0, len(e.Children))
	}
	for i, ce := range e.Children {
		c, err := fromExchange(ce, n, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, c)
	}
	return n, nil
}

// UnmarshalTree decodes a tree from exchange-shaped JSON.
func UnmarshalTree(data []byte) (*Node, error) {
	var e Exchange
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return FromExchange(e)
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
