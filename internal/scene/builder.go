package scene

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/pkg/math"
)

// matrixTolerance is how far an explicit node matrix may drift from the
// node's TRS fields before the record counts as contradictory.
const matrixTolerance = 1e-4

// BuildOptions controls validation and composition.
type BuildOptions struct {
	// RequireNormalTexture rejects materials without a normal map.
	RequireNormalTexture bool
	// Composition selects how ancestor transforms combine.
	Composition Composition
}

// DefaultBuildOptions returns strict validation with matrix composition.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		RequireNormalTexture: true,
		Composition:          CompositionMatrix,
	}
}

// Build converts flat source records into a Model. Every primitive is
// appended to one shared vertex buffer and one shared 32-bit index buffer.
// Any inconsistency fails the whole build with ErrMalformedScene; no partial
// model is returned.
func Build(src *Source, opts BuildOptions) (*Model, error) {
	b := &builder{
		src:  src,
		opts: opts,
		model: &Model{
			composition: opts.Composition,
			bySource:    make(map[int]int, len(src.Nodes)),
			dirty:       true,
			Bounds: Bounds{
				Min: math.Vec3{X: 1e10, Y: 1e10, Z: 1e10},
				Max: math.Vec3{X: -1e10, Y: -1e10, Z: -1e10},
			},
		},
		state: make([]visitState, len(src.Nodes)),
	}

	if err := b.buildImages(); err != nil {
		return nil, err
	}
	if err := b.buildTextures(); err != nil {
		return nil, err
	}
	if err := b.buildMaterials(); err != nil {
		return nil, err
	}

	roots, err := b.roots()
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		idx, err := b.buildNode(r, NoRef)
		if err != nil {
			return nil, err
		}
		b.model.Roots = append(b.model.Roots, idx)
	}

	// With derived roots every node must hang off one; the rest form cycles.
	if len(src.Roots) == 0 {
		for i, st := range b.state {
			if st != visited {
				return nil, malformed("node %d is unreachable from any root (cycle)", i)
			}
		}
	}

	if len(b.model.Vertices) == 0 {
		b.model.Bounds = Bounds{}
	}

	logger.Debug("scene graph built",
		zap.Int("nodes", len(b.model.Nodes)),
		zap.Int("roots", len(b.model.Roots)),
		zap.Int("primitives", b.model.PrimitiveCount()),
		zap.Int("vertices", len(b.model.Vertices)),
		zap.Int("indices", len(b.model.Indices)),
		zap.Int("materials", len(b.model.Materials)),
	)

	return b.model, nil
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

type builder struct {
	src   *Source
	opts  BuildOptions
	model *Model
	state []visitState
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedScene}, args...)...)
}

func (b *builder) buildImages() error {
	b.model.Images = make([]Image, len(b.src.Images))
	for i, img := range b.src.Images {
		if img.Width <= 0 || img.Height <= 0 {
			return malformed("image %d has invalid size %dx%d", i, img.Width, img.Height)
		}
		if img.Channels != 4 {
			return malformed("image %d has %d channels, want 4", i, img.Channels)
		}
		if want := img.Width * img.Height * 4; len(img.Pixels) != want {
			return malformed("image %d has %d bytes of pixels, want %d", i, len(img.Pixels), want)
		}
		b.model.Images[i] = Image{
			Name:   img.Name,
			Width:  img.Width,
			Height: img.Height,
			Pixels: img.Pixels,
		}
	}
	return nil
}

func (b *builder) buildTextures() error {
	b.model.Textures = make([]Texture, len(b.src.Textures))
	for i, tex := range b.src.Textures {
		if tex.Image < 0 || tex.Image >= len(b.model.Images) {
			return malformed("texture %d references image %d of %d", i, tex.Image, len(b.model.Images))
		}
		b.model.Textures[i] = Texture{Image: tex.Image}
	}
	return nil
}

func (b *builder) buildMaterials() error {
	b.model.Materials = make([]Material, len(b.src.Materials))
	b.model.Bindings = make([]MaterialBinding, len(b.src.Materials))

	for i := range b.src.Materials {
		rec := &b.src.Materials[i]
		mat := Material{
			Name:            rec.Name,
			BaseColorFactor: rec.BaseColorFactor,
			EmissiveFactor:  rec.EmissiveFactor,
			MetallicFactor:  rec.MetallicFactor,
			RoughnessFactor: rec.RoughnessFactor,
		}

		raw := [NumTextureSlots]int{
			SlotBaseColor:         rec.BaseColorTexture,
			SlotNormal:            rec.NormalTexture,
			SlotMetallicRoughness: rec.MetallicRoughnessTexture,
			SlotEmissive:          rec.EmissiveTexture,
			SlotOcclusion:         rec.OcclusionTexture,
		}
		for slot, idx := range raw {
			ref, err := b.textureRef(idx)
			if err != nil {
				return fmt.Errorf("material %d %s texture: %w", i, TextureSlot(slot), err)
			}
			mat.Textures[slot] = ref
		}

		if b.opts.RequireNormalTexture && !mat.Textures[SlotNormal].Valid() {
			return malformed("material %d (%q) has no normal texture", i, rec.Name)
		}

		b.model.Materials[i] = mat
		b.model.Bindings[i] = b.resolveBinding(&mat)
	}
	return nil
}

// textureRef turns a -1-for-absent texture index into a Ref.
func (b *builder) textureRef(idx int) (Ref, error) {
	switch {
	case idx == -1:
		return NoRef, nil
	case idx < 0 || idx >= len(b.model.Textures):
		return NoRef, malformed("index %d out of range [0,%d)", idx, len(b.model.Textures))
	default:
		return RefTo(idx), nil
	}
}

func (b *builder) resolveBinding(mat *Material) MaterialBinding {
	binding := UnboundMaterial()
	for slot, tex := range mat.Textures {
		ti, ok := tex.Index()
		if !ok {
			continue
		}
		binding.Images[slot] = RefTo(b.model.Textures[ti].Image)
		binding.Slots[slot] = int32(slot)
	}
	return binding
}

func (b *builder) roots() ([]int, error) {
	if len(b.src.Roots) > 0 {
		for _, r := range b.src.Roots {
			if r < 0 || r >= len(b.src.Nodes) {
				return nil, malformed("root %d out of range [0,%d)", r, len(b.src.Nodes))
			}
		}
		return b.src.Roots, nil
	}

	isChild := make([]bool, len(b.src.Nodes))
	for i := range b.src.Nodes {
		for _, c := range b.src.Nodes[i].Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 && len(b.src.Nodes) > 0 {
		return nil, malformed("every node is a child; hierarchy has no root")
	}
	return roots, nil
}

// buildNode appends the node, then its subtree, then its mesh geometry.
// Appending before recursing keeps parents at lower indices than children.
func (b *builder) buildNode(srcIdx int, parent Ref) (int, error) {
	switch b.state[srcIdx] {
	case visiting:
		return 0, malformed("node %d is its own ancestor", srcIdx)
	case visited:
		return 0, malformed("node %d has more than one parent", srcIdx)
	}
	b.state[srcIdx] = visiting

	rec := &b.src.Nodes[srcIdx]
	node := Node{
		Name:   rec.Name,
		Parent: parent,
		source: srcIdx,
	}
	if err := b.applyLocal(&node, rec); err != nil {
		return 0, fmt.Errorf("node %d: %w", srcIdx, err)
	}

	idx := len(b.model.Nodes)
	b.model.Nodes = append(b.model.Nodes, node)
	b.model.bySource[srcIdx] = idx
	if p, ok := parent.Index(); ok {
		b.model.Nodes[p].Children = append(b.model.Nodes[p].Children, idx)
	}

	for _, c := range rec.Children {
		if c < 0 || c >= len(b.src.Nodes) {
			return 0, malformed("node %d child %d out of range [0,%d)", srcIdx, c, len(b.src.Nodes))
		}
		if _, err := b.buildNode(c, RefTo(idx)); err != nil {
			return 0, err
		}
	}

	if rec.Mesh >= 0 {
		mesh, err := b.buildMesh(rec.Mesh)
		if err != nil {
			return 0, fmt.Errorf("node %d: %w", srcIdx, err)
		}
		b.model.Nodes[idx].Mesh = mesh
	} else if rec.Mesh != -1 {
		return 0, malformed("node %d mesh index %d", srcIdx, rec.Mesh)
	}

	b.state[srcIdx] = visited
	return idx, nil
}

// applyLocal sets the node pose. An explicit matrix wins over TRS fields,
// but only when both describe the same pose.
func (b *builder) applyLocal(node *Node, rec *SourceNode) error {
	t := IdentityTransform()
	hasTRS := false
	if rec.Translation != nil {
		t.Translation = *rec.Translation
		hasTRS = true
	}
	if rec.Rotation != nil {
		t.Rotation = rec.Rotation.Normalize()
		hasTRS = true
	}
	if rec.Scale != nil {
		t.Scale = *rec.Scale
		hasTRS = true
	}
	node.Local = t

	if rec.Matrix == nil {
		return nil
	}
	if hasTRS && !rec.Matrix.ApproxEqual(t.Matrix(), matrixTolerance) {
		return malformed("explicit matrix contradicts translation/rotation/scale")
	}
	if b.opts.Composition == CompositionTRS && !hasTRS {
		return fmt.Errorf("%w: explicit matrix cannot be composed channel-wise", ErrConfigMismatch)
	}
	node.Matrix = *rec.Matrix
	node.HasMatrix = true
	return nil
}

func (b *builder) buildMesh(meshIdx int) (Mesh, error) {
	if meshIdx >= len(b.src.Meshes) {
		return Mesh{}, malformed("mesh %d out of range [0,%d)", meshIdx, len(b.src.Meshes))
	}
	src := &b.src.Meshes[meshIdx]
	mesh := Mesh{
		Name:       src.Name,
		Primitives: make([]Primitive, 0, len(src.Primitives)),
	}
	for i := range src.Primitives {
		prim, err := b.appendPrimitive(&src.Primitives[i])
		if err != nil {
			return Mesh{}, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, i, err)
		}
		mesh.Primitives = append(mesh.Primitives, prim)
	}
	return mesh, nil
}

func (b *builder) appendPrimitive(p *SourcePrimitive) (Primitive, error) {
	material := NoRef
	switch {
	case p.Material == -1:
	case p.Material < 0 || p.Material >= len(b.model.Materials):
		return Primitive{}, malformed("material %d out of range [0,%d)", p.Material, len(b.model.Materials))
	default:
		material = RefTo(p.Material)
	}

	count := len(p.Positions)
	if count == 0 {
		return Primitive{}, malformed("missing position attribute")
	}
	if err := checkAttribute("normal", len(p.Normals), count); err != nil {
		return Primitive{}, err
	}
	if err := checkAttribute("texcoord", len(p.TexCoords), count); err != nil {
		return Primitive{}, err
	}
	if err := checkAttribute("color", len(p.Colors), count); err != nil {
		return Primitive{}, err
	}
	if err := checkAttribute("tangent", len(p.Tangents), count); err != nil {
		return Primitive{}, err
	}

	local, err := readIndices(p.Indices, count)
	if err != nil {
		return Primitive{}, err
	}

	vertexStart := len(b.model.Vertices)
	firstIndex := len(b.model.Indices)
	if uint64(vertexStart+count) > gomath.MaxUint32 || uint64(firstIndex+len(local)) > gomath.MaxUint32 {
		return Primitive{}, malformed("shared buffers exceed 32-bit addressing")
	}

	for v := 0; v < count; v++ {
		vert := Vertex{
			Position: p.Positions[v],
			Color:    math.Vec3One(),
		}
		if len(p.Normals) > 0 {
			vert.Normal = p.Normals[v].Normalize()
		}
		if len(p.TexCoords) > 0 {
			vert.UV = p.TexCoords[v]
		}
		if len(p.Colors) > 0 {
			vert.Color = p.Colors[v]
		}
		if len(p.Tangents) > 0 {
			vert.Tangent = p.Tangents[v].Normalize()
		}
		updateBounds(&b.model.Bounds, vert.Position)
		b.model.Vertices = append(b.model.Vertices, vert)
	}

	for _, idx := range local {
		b.model.Indices = append(b.model.Indices, idx+uint32(vertexStart))
	}

	return Primitive{
		FirstIndex:  uint32(firstIndex),
		IndexCount:  uint32(len(local)),
		VertexStart: uint32(vertexStart),
		VertexCount: uint32(count),
		Material:    material,
	}, nil
}

func checkAttribute(name string, got, want int) error {
	if got != 0 && got != want {
		return malformed("%s count %d does not match %d positions", name, got, want)
	}
	return nil
}

// readIndices widens an index accessor to uint32 and checks every index
// against the primitive's vertex count. Non-indexed primitives get 0..n-1.
func readIndices(data *IndexData, vertexCount int) ([]uint32, error) {
	if data == nil {
		out := make([]uint32, vertexCount)
		for i := range out {
			out[i] = uint32(i)
		}
		return out, nil
	}

	switch data.Width {
	case 1, 2, 4:
	default:
		return nil, malformed("unsupported index width %d bytes", data.Width)
	}
	if data.Count < 0 || data.Count > len(data.Data)/data.Width {
		return nil, malformed("index buffer holds %d bytes, too few for %d indices of %d bytes",
			len(data.Data), data.Count, data.Width)
	}

	out := make([]uint32, data.Count)
	for i := range out {
		switch data.Width {
		case 1:
			out[i] = uint32(data.Data[i])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data.Data[i*2:]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(data.Data[i*4:])
		}
		if out[i] >= uint32(vertexCount) {
			return nil, malformed("index %d = %d exceeds %d vertices", i, out[i], vertexCount)
		}
	}
	return out, nil
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
	b.Max = math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
}
