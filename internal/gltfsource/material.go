package gltfsource

import (
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/scenegraph/internal/scene"
)

func (c *converter) textures() ([]scene.SourceTexture, error) {
	out := make([]scene.SourceTexture, len(c.doc.Textures))
	for i, t := range c.doc.Textures {
		if t.Source == nil {
			return nil, malformed("texture %d has no image source", i)
		}
		out[i] = scene.SourceTexture{Image: *t.Source}
	}
	return out, nil
}

func (c *converter) materials() []scene.SourceMaterial {
	out := make([]scene.SourceMaterial, len(c.doc.Materials))
	for i, m := range c.doc.Materials {
		rec := scene.DefaultSourceMaterial()
		rec.Name = m.Name
		for j, f := range m.EmissiveFactor {
			rec.EmissiveFactor[j] = float32(f)
		}

		if pbr := m.PBRMetallicRoughness; pbr != nil {
			for j, f := range pbr.BaseColorFactorOrDefault() {
				rec.BaseColorFactor[j] = float32(f)
			}
			rec.MetallicFactor = float32(pbr.MetallicFactorOrDefault())
			rec.RoughnessFactor = float32(pbr.RoughnessFactorOrDefault())
			rec.BaseColorTexture = textureIndex(pbr.BaseColorTexture)
			rec.MetallicRoughnessTexture = textureIndex(pbr.MetallicRoughnessTexture)
		}
		if m.NormalTexture != nil && m.NormalTexture.Index != nil {
			rec.NormalTexture = *m.NormalTexture.Index
		}
		if m.OcclusionTexture != nil && m.OcclusionTexture.Index != nil {
			rec.OcclusionTexture = *m.OcclusionTexture.Index
		}
		rec.EmissiveTexture = textureIndex(m.EmissiveTexture)
		out[i] = rec
	}
	return out
}

func textureIndex(info *gltf.TextureInfo) int {
	if info == nil {
		return -1
	}
	return info.Index
}
