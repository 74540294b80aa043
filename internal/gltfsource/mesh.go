package gltfsource

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/internal/scene"
	"github.com/Faultbox/scenegraph/pkg/math"
)

func (c *converter) meshes() ([]scene.SourceMesh, error) {
	out := make([]scene.SourceMesh, len(c.doc.Meshes))
	for i, m := range c.doc.Meshes {
		mesh := scene.SourceMesh{Name: m.Name}
		for j, p := range m.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				logger.Warn("skipping non-triangle primitive",
					zap.Int("mesh", i),
					zap.Int("primitive", j),
					zap.Int("mode", int(p.Mode)))
				continue
			}
			prim, err := c.primitive(p)
			if err != nil {
				return nil, wrapf(err, "mesh %d primitive %d", i, j)
			}
			mesh.Primitives = append(mesh.Primitives, prim)
		}
		out[i] = mesh
	}
	return out, nil
}

func (c *converter) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(c.doc.Accessors) {
		return nil, malformed("accessor %d out of range [0,%d)", idx, len(c.doc.Accessors))
	}
	return c.doc.Accessors[idx], nil
}

func (c *converter) primitive(p *gltf.Primitive) (scene.SourcePrimitive, error) {
	prim := scene.SourcePrimitive{Material: -1}
	if p.Material != nil {
		prim.Material = *p.Material
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return prim, malformed("missing %s attribute", gltf.POSITION)
	}
	acr, err := c.accessor(posIdx)
	if err != nil {
		return prim, err
	}
	positions, err := modeler.ReadPosition(c.doc, acr, nil)
	if err != nil {
		return prim, malformed("read positions: %v", err)
	}
	prim.Positions = toVec3s(positions)

	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err = c.accessor(idx); err != nil {
			return prim, err
		}
		normals, err := modeler.ReadNormal(c.doc, acr, nil)
		if err != nil {
			return prim, malformed("read normals: %v", err)
		}
		prim.Normals = toVec3s(normals)
	}

	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = c.accessor(idx); err != nil {
			return prim, err
		}
		uvs, err := modeler.ReadTextureCoord(c.doc, acr, nil)
		if err != nil {
			return prim, malformed("read texcoords: %v", err)
		}
		prim.TexCoords = make([]math.Vec2, len(uvs))
		for i, uv := range uvs {
			prim.TexCoords[i] = math.Vec2{X: uv[0], Y: uv[1]}
		}
	}

	if idx, ok := p.Attributes[gltf.COLOR_0]; ok {
		if acr, err = c.accessor(idx); err != nil {
			return prim, err
		}
		colors, err := modeler.ReadColor(c.doc, acr, nil)
		if err != nil {
			return prim, malformed("read colors: %v", err)
		}
		prim.Colors = make([]math.Vec3, len(colors))
		for i, col := range colors {
			prim.Colors[i] = math.Vec3{
				X: float32(col[0]) / 255,
				Y: float32(col[1]) / 255,
				Z: float32(col[2]) / 255,
			}
		}
	}

	if idx, ok := p.Attributes[gltf.TANGENT]; ok {
		if acr, err = c.accessor(idx); err != nil {
			return prim, err
		}
		tangents, err := modeler.ReadTangent(c.doc, acr, nil)
		if err != nil {
			return prim, malformed("read tangents: %v", err)
		}
		prim.Tangents = make([]math.Vec3, len(tangents))
		for i, tg := range tangents {
			prim.Tangents[i] = math.Vec3{X: tg[0], Y: tg[1], Z: tg[2]}
		}
	}

	if p.Indices != nil {
		if prim.Indices, err = c.indices(*p.Indices); err != nil {
			return prim, err
		}
	}
	return prim, nil
}

// indices returns the index accessor's bytes as stored, tightly packed, with
// the component width the builder widens from.
func (c *converter) indices(idx int) (*scene.IndexData, error) {
	acr, err := c.accessor(idx)
	if err != nil {
		return nil, err
	}
	if acr.Type != gltf.AccessorScalar {
		return nil, malformed("index accessor %d has type %v", idx, acr.Type)
	}

	var width int
	switch acr.ComponentType {
	case gltf.ComponentUbyte:
		width = 1
	case gltf.ComponentUshort:
		width = 2
	case gltf.ComponentUint:
		width = 4
	default:
		return nil, malformed("index accessor %d has component type %v", idx, acr.ComponentType)
	}

	data := &scene.IndexData{Width: width, Count: acr.Count}
	size := acr.Count * width
	if acr.BufferView == nil {
		data.Data = make([]byte, size)
		return data, nil
	}

	raw, stride, err := c.bufferView(*acr.BufferView)
	if err != nil {
		return nil, err
	}
	if stride == 0 {
		stride = width
	}
	start := acr.ByteOffset
	if acr.Count > 0 && start+(acr.Count-1)*stride+width > len(raw) {
		return nil, malformed("index accessor %d overruns buffer view %d", idx, *acr.BufferView)
	}

	if stride == width {
		data.Data = raw[start : start+size]
		return data, nil
	}
	data.Data = make([]byte, 0, size)
	for i := 0; i < acr.Count; i++ {
		off := start + i*stride
		data.Data = append(data.Data, raw[off:off+width]...)
	}
	return data, nil
}

// bufferView returns the bytes of a buffer view and its stride.
func (c *converter) bufferView(idx int) ([]byte, int, error) {
	if idx < 0 || idx >= len(c.doc.BufferViews) {
		return nil, 0, malformed("buffer view %d out of range [0,%d)", idx, len(c.doc.BufferViews))
	}
	bv := c.doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(c.doc.Buffers) {
		return nil, 0, malformed("buffer view %d references buffer %d of %d", idx, bv.Buffer, len(c.doc.Buffers))
	}
	buf := c.doc.Buffers[bv.Buffer].Data
	if bv.ByteOffset+bv.ByteLength > len(buf) {
		return nil, 0, malformed("buffer view %d overruns buffer %d", idx, bv.Buffer)
	}
	return buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], bv.ByteStride, nil
}

func toVec3s(in [][3]float32) []math.Vec3 {
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = math.Vec3FromArray(v)
	}
	return out
}
