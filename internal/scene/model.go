// Package scene holds the scene graph model built from flat interchange
// records: an arena of nodes, shared vertex and index buffers, materials,
// textures and images, plus world-transform resolution and draw traversal.
package scene

import "github.com/Faultbox/scenegraph/pkg/math"

// Vertex is one entry of the shared vertex buffer.
// Field order is the layout consumed by render backends.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    math.Vec3
	Tangent  math.Vec3
}

// VertexAttribute describes one interleaved field of Vertex.
type VertexAttribute struct {
	Name       string
	Offset     uint32 // bytes from the start of the vertex
	Components uint32 // float32 components
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = 14 * 4

// VertexLayout lists the Vertex fields in buffer order.
var VertexLayout = []VertexAttribute{
	{Name: "position", Offset: 0, Components: 3},
	{Name: "normal", Offset: 12, Components: 3},
	{Name: "uv", Offset: 24, Components: 2},
	{Name: "color", Offset: 32, Components: 3},
	{Name: "tangent", Offset: 44, Components: 3},
}

// Image is a decoded RGBA8 pixel buffer.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// Texture names an image.
type Texture struct {
	Image int
}

// TextureSlot identifies a material texture channel.
type TextureSlot int

// Material texture channels, in binding order.
const (
	SlotBaseColor TextureSlot = iota
	SlotNormal
	SlotMetallicRoughness
	SlotEmissive
	SlotOcclusion

	NumTextureSlots = 5
)

// String returns the channel name.
func (s TextureSlot) String() string {
	switch s {
	case SlotBaseColor:
		return "base_color"
	case SlotNormal:
		return "normal"
	case SlotMetallicRoughness:
		return "metallic_roughness"
	case SlotEmissive:
		return "emissive"
	case SlotOcclusion:
		return "occlusion"
	default:
		return "unknown"
	}
}

// Material describes surface appearance. Textures index Model.Textures.
type Material struct {
	Name            string
	BaseColorFactor [4]float32
	EmissiveFactor  [3]float32
	MetallicFactor  float32
	RoughnessFactor float32
	Textures        [NumTextureSlots]Ref
}

// Texture returns the texture bound to slot.
func (m *Material) Texture(slot TextureSlot) Ref {
	return m.Textures[slot]
}

// MaterialBinding is a material's textures resolved down to images.
// Slots holds, per channel, the binding slot number or -1 when the channel
// is absent; shaders branch on it.
type MaterialBinding struct {
	Images [NumTextureSlots]Ref
	Slots  [NumTextureSlots]int32
}

// UnboundMaterial is the binding used by primitives without a material.
func UnboundMaterial() MaterialBinding {
	var b MaterialBinding
	for i := range b.Slots {
		b.Slots[i] = -1
	}
	return b
}

// Primitive is one indexed draw range within the shared buffers.
type Primitive struct {
	FirstIndex  uint32
	IndexCount  uint32
	VertexStart uint32
	VertexCount uint32
	Material    Ref
}

// Mesh is the geometry attached to a node.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Node is one vertex of the scene hierarchy. Parent and Children index
// Model.Nodes; a parent always has a lower index than its children.
type Node struct {
	Name     string
	Parent   Ref
	Children []int
	Mesh     Mesh

	// Local is the node's pose. When HasMatrix is set, Matrix is used instead.
	// Change it through Model.SetLocal; writing the field directly leaves
	// cached world matrices stale.
	Local     Transform
	Matrix    math.Mat4
	HasMatrix bool

	source int
}

// LocalMatrix returns the node's local transform as a matrix.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.HasMatrix {
		return n.Matrix
	}
	return n.Local.Matrix()
}

// Source returns the index of the input record this node was built from.
func (n *Node) Source() int {
	return n.source
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Composition selects how ancestor transforms are combined.
type Composition int

const (
	// CompositionMatrix multiplies full 4x4 local matrices.
	CompositionMatrix Composition = iota
	// CompositionTRS combines scale/rotation/translation channel-wise with
	// Compose. Only exact for unrotated, unit-scale parents.
	CompositionTRS
)

// Model is a loaded scene. Topology, buffers and materials are fixed after
// Build; only local transforms change, through SetLocal.
type Model struct {
	Nodes     []Node
	Roots     []int
	Vertices  []Vertex
	Indices   []uint32
	Materials []Material
	Bindings  []MaterialBinding
	Textures  []Texture
	Images    []Image
	Bounds    Bounds

	composition Composition
	bySource    map[int]int
	world       []math.Mat4
	worldTRS    []Transform
	dirty       bool
}

// NodeBySource maps an input node index to its index in Nodes.
// Nodes outside the built scene report false.
func (m *Model) NodeBySource(source int) (int, bool) {
	i, ok := m.bySource[source]
	return i, ok
}

// Composition returns the composition mode the model was built with.
func (m *Model) Composition() Composition {
	return m.composition
}

// SetLocal replaces a node's local pose and invalidates cached world matrices.
func (m *Model) SetLocal(node int, t Transform) {
	m.Nodes[node].Local = t
	m.dirty = true
}

// PrimitiveCount returns the number of primitives over all nodes.
func (m *Model) PrimitiveCount() int {
	n := 0
	for i := range m.Nodes {
		n += len(m.Nodes[i].Mesh.Primitives)
	}
	return n
}

// Binding returns the resolved textures for a primitive's material.
func (m *Model) Binding(material Ref) MaterialBinding {
	i, ok := material.Index()
	if !ok {
		return UnboundMaterial()
	}
	return m.Bindings[i]
}
