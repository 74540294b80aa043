package scene

import "github.com/Faultbox/scenegraph/pkg/math"

// Source is the flat, index-addressed scene handed over by an asset loader.
// Index fields use -1 for "absent", as interchange formats do.
type Source struct {
	Nodes     []SourceNode
	Roots     []int // empty: every node that is nobody's child, in index order
	Meshes    []SourceMesh
	Materials []SourceMaterial
	Textures  []SourceTexture
	Images    []SourceImage
}

// SourceNode is a raw node record. Either the TRS fields or Matrix describe
// the local pose.
type SourceNode struct {
	Name        string
	Translation *math.Vec3
	Rotation    *math.Quat
	Scale       *math.Vec3
	Matrix      *math.Mat4
	Mesh        int
	Children    []int
}

// SourceMesh is a list of primitives.
type SourceMesh struct {
	Name       string
	Primitives []SourcePrimitive
}

// IndexData is a raw little-endian index accessor.
type IndexData struct {
	Data  []byte
	Width int // bytes per index: 1, 2 or 4
	Count int
}

// SourcePrimitive holds per-vertex attribute arrays. Positions is required;
// the other attributes are optional but must match its length when present.
// A nil Indices means the primitive is drawn in vertex order.
type SourcePrimitive struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Colors    []math.Vec3
	Tangents  []math.Vec3
	Indices   *IndexData
	Material  int
}

// SourceMaterial is a raw material record. Texture fields index
// Source.Textures, -1 when absent.
type SourceMaterial struct {
	Name                     string
	BaseColorFactor          [4]float32
	EmissiveFactor           [3]float32
	MetallicFactor           float32
	RoughnessFactor          float32
	BaseColorTexture         int
	NormalTexture            int
	MetallicRoughnessTexture int
	EmissiveTexture          int
	OcclusionTexture         int
}

// DefaultSourceMaterial returns a material with interchange defaults and no textures.
func DefaultSourceMaterial() SourceMaterial {
	return SourceMaterial{
		BaseColorFactor:          [4]float32{1, 1, 1, 1},
		MetallicFactor:           1,
		RoughnessFactor:          1,
		BaseColorTexture:         -1,
		NormalTexture:            -1,
		MetallicRoughnessTexture: -1,
		EmissiveTexture:          -1,
		OcclusionTexture:         -1,
	}
}

// SourceTexture names an image.
type SourceTexture struct {
	Image int
}

// SourceImage is a decoded pixel buffer. Loaders expand RGB to RGBA, so
// Channels must be 4.
type SourceImage struct {
	Name     string
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}
