// Package gltfsource converts glTF 2.0 documents into the flat scene records
// consumed by scene.Build, plus raw animation channels for animation.NewClip.
package gltfsource

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/scenegraph/internal/animation"
	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/internal/scene"
	"github.com/Faultbox/scenegraph/pkg/math"
)

// Asset is a converted document.
type Asset struct {
	Source scene.Source
	Clips  []ClipSource
}

// ClipSource holds the raw channels of one document animation.
type ClipSource struct {
	Name     string
	Channels []animation.Channel
}

// Open reads a .gltf or .glb file and converts it. sceneIndex selects the
// scene to load; a negative value uses the document's default scene.
func Open(path string, sceneIndex int) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return FromDocument(doc, filepath.Dir(path), sceneIndex)
}

// FromDocument converts an already decoded document. dir resolves image URIs
// that point at files.
func FromDocument(doc *gltf.Document, dir string, sceneIndex int) (*Asset, error) {
	c := &converter{doc: doc, dir: dir}
	asset := &Asset{}
	src := &asset.Source

	var err error
	if src.Roots, err = c.roots(sceneIndex); err != nil {
		return nil, err
	}
	if src.Images, err = c.images(); err != nil {
		return nil, err
	}
	if src.Textures, err = c.textures(); err != nil {
		return nil, err
	}
	src.Materials = c.materials()
	if src.Meshes, err = c.meshes(); err != nil {
		return nil, err
	}
	src.Nodes = c.nodes()
	if asset.Clips, err = c.clips(); err != nil {
		return nil, err
	}

	logger.Debug("glTF document converted",
		zap.Int("nodes", len(src.Nodes)),
		zap.Int("roots", len(src.Roots)),
		zap.Int("meshes", len(src.Meshes)),
		zap.Int("materials", len(src.Materials)),
		zap.Int("images", len(src.Images)),
		zap.Int("clips", len(asset.Clips)),
	)
	return asset, nil
}

type converter struct {
	doc *gltf.Document
	dir string
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{scene.ErrMalformedScene}, args...)...)
}

// roots picks the scene's root list: the requested scene, else the
// document default, else the first scene. With no scenes at all the builder
// derives roots from the hierarchy.
func (c *converter) roots(sceneIndex int) ([]int, error) {
	idx := sceneIndex
	if idx < 0 {
		switch {
		case c.doc.Scene != nil:
			idx = *c.doc.Scene
		case len(c.doc.Scenes) > 0:
			idx = 0
		default:
			return nil, nil
		}
	}
	if idx >= len(c.doc.Scenes) {
		return nil, malformed("scene %d out of range [0,%d)", idx, len(c.doc.Scenes))
	}
	return append([]int(nil), c.doc.Scenes[idx].Nodes...), nil
}

var (
	zeroMatrix     [16]float64
	identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	identityRot    = [4]float64{0, 0, 0, 1}
	unitScale      = [3]float64{1, 1, 1}
)

// nodes converts every node record. glTF stores absent TRS fields as their
// defaults, so a field is reported only when it differs from the default.
func (c *converter) nodes() []scene.SourceNode {
	out := make([]scene.SourceNode, len(c.doc.Nodes))
	for i, n := range c.doc.Nodes {
		rec := scene.SourceNode{
			Name:     n.Name,
			Mesh:     -1,
			Children: append([]int(nil), n.Children...),
		}
		if n.Mesh != nil {
			rec.Mesh = *n.Mesh
		}
		if n.Translation != [3]float64{} {
			v := vec3(n.Translation)
			rec.Translation = &v
		}
		if n.Rotation != identityRot && n.Rotation != [4]float64{} {
			q := math.Quat{
				X: float32(n.Rotation[0]),
				Y: float32(n.Rotation[1]),
				Z: float32(n.Rotation[2]),
				W: float32(n.Rotation[3]),
			}
			rec.Rotation = &q
		}
		if n.Scale != unitScale && n.Scale != [3]float64{} {
			v := vec3(n.Scale)
			rec.Scale = &v
		}
		if n.Matrix != identityMatrix && n.Matrix != zeroMatrix {
			var m math.Mat4
			for j, f := range n.Matrix {
				m[j] = float32(f)
			}
			rec.Matrix = &m
		}
		out[i] = rec
	}
	return out
}

func vec3(a [3]float64) math.Vec3 {
	return math.Vec3{X: float32(a[0]), Y: float32(a[1]), Z: float32(a[2])}
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
