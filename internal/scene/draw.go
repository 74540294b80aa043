package scene

import "github.com/Faultbox/scenegraph/pkg/math"

// DrawUnit is one indexed draw call for the render backend.
type DrawUnit struct {
	Node       int
	World      math.Mat4
	FirstIndex uint32
	IndexCount uint32
	Material   Ref
	Binding    MaterialBinding
}

// Traverse visits nodes depth-first in preorder starting from each root in
// order. Every primitive with a non-empty index range yields one DrawUnit;
// children are visited whether or not their parent carried geometry.
func (m *Model) Traverse(visit func(DrawUnit)) {
	m.ResolveWorld()

	stack := make([]int, 0, len(m.Nodes))
	for i := len(m.Roots) - 1; i >= 0; i-- {
		stack = append(stack, m.Roots[i])
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &m.Nodes[idx]

		for _, prim := range node.Mesh.Primitives {
			if prim.IndexCount == 0 {
				continue
			}
			visit(DrawUnit{
				Node:       idx,
				World:      m.world[idx],
				FirstIndex: prim.FirstIndex,
				IndexCount: prim.IndexCount,
				Material:   prim.Material,
				Binding:    m.Binding(prim.Material),
			})
		}

		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// DrawUnits collects the traversal into a slice.
func (m *Model) DrawUnits() []DrawUnit {
	var units []DrawUnit
	m.Traverse(func(u DrawUnit) {
		units = append(units, u)
	})
	return units
}
