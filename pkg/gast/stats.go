package gast

import "sort"

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int          `json:"nodes" yaml:"nodes"`
	MaxDepth int          `json:"max_depth" yaml:"max_depth"`
	ByKind   map[Kind]int `json:"by_kind" yaml:"by_kind"`
}

// Compute walks root and counts its nodes.
func Compute(root *Node) Stats {
	s := Stats{ByKind: make(map[Kind]int)}
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		s.Nodes++
		s.ByKind[n.kind]++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	if root != nil {
		visit(root, 1)
	}
	return s
}

// Merge adds other's counts into s. MaxDepth keeps the larger value.
func (s *Stats) Merge(other Stats) {
	if s.ByKind == nil {
		s.ByKind = make(map[Kind]int)
	}
	s.Nodes += other.Nodes
	if other.MaxDepth > s.MaxDepth {
		s.MaxDepth = other.MaxDepth
	}
	for k, v := range other.ByKind {
		s.ByKind[k] += v
	}
}

// SortedKinds returns the kinds present in s, most frequent first.
func (s Stats) SortedKinds() []Kind {
	kinds := make([]Kind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if s.ByKind[kinds[i]] != s.ByKind[kinds[j]] {
			return s.ByKind[kinds[i]] > s.ByKind[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}
