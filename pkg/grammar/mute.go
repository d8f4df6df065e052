package grammar

import "github.com/leapstack-labs/gast/pkg/cst"

// Mute suppresses the events of a subtree. An adapter starts it on the
// enter of a node whose descendants carry nothing it wants, and every event
// strictly inside that node is then reported as muted. The muting node's
// own exit is not muted.
type Mute struct {
	depth int
	on    bool
}

// Start mutes the descendants of ev's node.
func (m *Mute) Start(ev cst.Event) {
	if m.on {
		return
	}
	m.depth = ev.Depth()
	m.on = true
}

// Inside reports whether ev lies strictly inside the muted subtree.
func (m *Mute) Inside(ev cst.Event) bool {
	return m.on && ev.Depth() > m.depth
}

// Leave ends muting when ev exits the node that started it.
func (m *Mute) Leave(ev cst.Event) {
	if m.on && ev.Depth() == m.depth {
		m.on = false
	}
}
