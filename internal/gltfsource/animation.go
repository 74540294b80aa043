package gltfsource

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/scenegraph/internal/animation"
	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/internal/scene"
	"github.com/Faultbox/scenegraph/pkg/math"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{scene.ErrInvalidAnimationData}, args...)...)
}

// clips converts document animations. A channel's timeline is the index of
// its sampler's input accessor, so channels sharing sample times share a
// timeline.
func (c *converter) clips() ([]ClipSource, error) {
	times := make(map[int][]float32)
	out := make([]ClipSource, 0, len(c.doc.Animations))

	for ai, anim := range c.doc.Animations {
		clip := ClipSource{Name: anim.Name}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%d", ai)
		}

		for ci, ch := range anim.Channels {
			if ch.Target.Node == nil {
				continue
			}
			var path animation.Path
			switch ch.Target.Path {
			case gltf.TRSTranslation:
				path = animation.PathTranslation
			case gltf.TRSRotation:
				path = animation.PathRotation
			case gltf.TRSScale:
				path = animation.PathScale
			default:
				logger.Warn("skipping unsupported animation path",
					zap.String("clip", clip.Name),
					zap.Int("channel", ci))
				continue
			}

			if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
				return nil, invalid("clip %q channel %d sampler %d out of range [0,%d)",
					clip.Name, ci, ch.Sampler, len(anim.Samplers))
			}
			smp := anim.Samplers[ch.Sampler]

			input, ok := times[smp.Input]
			if !ok {
				var err error
				if input, err = c.readTimes(smp.Input); err != nil {
					return nil, wrapf(err, "clip %q channel %d", clip.Name, ci)
				}
				times[smp.Input] = input
			}

			rec := animation.Channel{
				Node:     *ch.Target.Node,
				Path:     path,
				Timeline: smp.Input,
				Times:    input,
			}
			stride := 1
			switch smp.Interpolation {
			case gltf.InterpolationLinear:
			case gltf.InterpolationStep:
				logger.Warn("step interpolation sampled linearly",
					zap.String("clip", clip.Name), zap.Int("channel", ci))
			case gltf.InterpolationCubicSpline:
				logger.Warn("cubic spline tangents dropped, keyframes sampled linearly",
					zap.String("clip", clip.Name), zap.Int("channel", ci))
				stride = 3
			}

			var err error
			if path == animation.PathRotation {
				rec.Rotations, err = c.readRotations(smp.Output, stride)
			} else {
				rec.Vectors, err = c.readVectors(smp.Output, stride)
			}
			if err != nil {
				return nil, wrapf(err, "clip %q channel %d", clip.Name, ci)
			}
			clip.Channels = append(clip.Channels, rec)
		}
		out = append(out, clip)
	}
	return out, nil
}

func (c *converter) readAccessor(idx int) (any, error) {
	acr, err := c.accessor(idx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(c.doc, acr, nil)
	if err != nil {
		return nil, invalid("accessor %d: %v", idx, err)
	}
	return data, nil
}

func (c *converter) readTimes(idx int) ([]float32, error) {
	data, err := c.readAccessor(idx)
	if err != nil {
		return nil, err
	}
	times, ok := data.([]float32)
	if !ok {
		return nil, invalid("input accessor %d holds %T, want float scalars", idx, data)
	}
	return times, nil
}

// keyframes picks the value of every keyframe; cubic spline outputs store
// in-tangent, value, out-tangent triplets.
func keyframes[T any](in []T, stride int) []T {
	if stride == 1 {
		return in
	}
	out := make([]T, 0, len(in)/stride)
	for i := 1; i < len(in); i += stride {
		out = append(out, in[i])
	}
	return out
}

func (c *converter) readVectors(idx, stride int) ([]math.Vec3, error) {
	data, err := c.readAccessor(idx)
	if err != nil {
		return nil, err
	}
	values, ok := data.([][3]float32)
	if !ok {
		return nil, invalid("output accessor %d holds %T, want float vec3", idx, data)
	}
	return toVec3s(keyframes(values, stride)), nil
}

func (c *converter) readRotations(idx, stride int) ([]math.Quat, error) {
	data, err := c.readAccessor(idx)
	if err != nil {
		return nil, err
	}

	var values [][4]float32
	switch v := data.(type) {
	case [][4]float32:
		values = v
	case [][4]int8:
		values = normalized(v, 127, true)
	case [][4]uint8:
		values = normalized(v, 255, false)
	case [][4]int16:
		values = normalized(v, 32767, true)
	case [][4]uint16:
		values = normalized(v, 65535, false)
	default:
		return nil, invalid("output accessor %d holds %T, want vec4 rotations", idx, data)
	}

	values = keyframes(values, stride)
	out := make([]math.Quat, len(values))
	for i, q := range values {
		out[i] = math.QuatFromArray(q)
	}
	return out, nil
}

func normalized[T int8 | uint8 | int16 | uint16](in [][4]T, scale float32, signed bool) [][4]float32 {
	out := make([][4]float32, len(in))
	for i, q := range in {
		for j, c := range q {
			f := float32(c) / scale
			if signed {
				f = max(f, -1)
			}
			out[i][j] = f
		}
	}
	return out
}
