package scene

import "github.com/Faultbox/scenegraph/pkg/math"

// Transform is a local pose: scale, then rotation, then translation.
type Transform struct {
	Scale       math.Vec3
	Rotation    math.Quat
	Translation math.Vec3
}

// IdentityTransform returns unit scale, no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{
		Scale:       math.Vec3One(),
		Rotation:    math.QuatIdentity(),
		Translation: math.Vec3{},
	}
}

// Compose combines parent and child channel by channel: rotations multiply,
// scales multiply component-wise and translations add. This matches the
// matrix product only when the parent has no rotation and uniform unit
// scale; hierarchies in general go through Matrix instead.
func Compose(parent, child Transform) Transform {
	return Transform{
		Scale:       parent.Scale.Mul(child.Scale),
		Rotation:    parent.Rotation.Mul(child.Rotation).Normalize(),
		Translation: parent.Translation.Add(child.Translation),
	}
}

// Matrix returns translate * rotate * scale.
func (t Transform) Matrix() math.Mat4 {
	return math.TranslateVec3(t.Translation).
		Mul(t.Rotation.ToMat4()).
		Mul(math.ScaleVec3(t.Scale))
}
