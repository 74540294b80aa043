package scene

import "github.com/Faultbox/scenegraph/pkg/math"

// WorldMatrix walks from node up to its root, left-multiplying each
// ancestor's local matrix. It costs O(depth); per-frame rendering should use
// World, which is backed by a cache refreshed in one pass.
func (m *Model) WorldMatrix(node int) math.Mat4 {
	if m.composition == CompositionTRS {
		return m.worldTransformWalk(node).Matrix()
	}
	world := m.Nodes[node].LocalMatrix()
	for p, ok := m.Nodes[node].Parent.Index(); ok; p, ok = m.Nodes[p].Parent.Index() {
		world = m.Nodes[p].LocalMatrix().Mul(world)
	}
	return world
}

func (m *Model) worldTransformWalk(node int) Transform {
	world := m.Nodes[node].Local
	for p, ok := m.Nodes[node].Parent.Index(); ok; p, ok = m.Nodes[p].Parent.Index() {
		world = Compose(m.Nodes[p].Local, world)
	}
	return world
}

// ResolveWorld recomputes every cached world matrix if any local transform
// changed since the last call. Parents precede children in Nodes, so a single
// forward pass sees every parent's world matrix before its children need it.
func (m *Model) ResolveWorld() {
	if !m.dirty && len(m.world) == len(m.Nodes) {
		return
	}
	if len(m.world) != len(m.Nodes) {
		m.world = make([]math.Mat4, len(m.Nodes))
	}

	if m.composition == CompositionTRS {
		if len(m.worldTRS) != len(m.Nodes) {
			m.worldTRS = make([]Transform, len(m.Nodes))
		}
		for i := range m.Nodes {
			n := &m.Nodes[i]
			if p, ok := n.Parent.Index(); ok {
				m.worldTRS[i] = Compose(m.worldTRS[p], n.Local)
			} else {
				m.worldTRS[i] = n.Local
			}
			m.world[i] = m.worldTRS[i].Matrix()
		}
	} else {
		for i := range m.Nodes {
			n := &m.Nodes[i]
			if p, ok := n.Parent.Index(); ok {
				m.world[i] = m.world[p].Mul(n.LocalMatrix())
			} else {
				m.world[i] = n.LocalMatrix()
			}
		}
	}
	m.dirty = false
}

// World returns the node's cached world matrix, refreshing the cache first
// if needed.
func (m *Model) World(node int) math.Mat4 {
	m.ResolveWorld()
	return m.world[node]
}
