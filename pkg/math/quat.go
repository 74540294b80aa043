package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	half := float64(angle) / 2
	s := float32(math.Sin(half))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(half)),
	}
}

// QuatFromArray builds a quaternion from [x, y, z, w].
func QuatFromArray(a [4]float32) Quat {
	return Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

// Array returns the components as [x, y, z, w].
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// Len returns the quaternion norm.
func (q Quat) Len() float32 {
	return float32(math.Sqrt(float64(q.Dot(q))))
}

// Normalize returns a unit quaternion.
// Degenerate (near zero) quaternions normalize to identity.
func (q Quat) Normalize() Quat {
	length := q.Len()
	if length < 1e-6 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Negate returns -q, which represents the same rotation.
func (q Quat) Negate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
}

// Mul multiplies two quaternions (q applied after other).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Slerp performs spherical linear interpolation between two rotations along
// the shorter arc. Inputs need not be normalized; the result always is.
func (q Quat) Slerp(other Quat, t float32) Quat {
	a := q.Normalize()
	b := other.Normalize()

	dot := a.Dot(b)
	if dot < 0 {
		b = b.Negate()
		dot = -dot
	}

	// Nearly parallel: sin(theta) vanishes, fall back to nlerp.
	if dot > 0.9995 {
		return Quat{
			X: a.X + t*(b.X-a.X),
			Y: a.Y + t*(b.Y-a.Y),
			Z: a.Z + t*(b.Z-a.Z),
			W: a.W + t*(b.W-a.W),
		}.Normalize()
	}

	theta := math.Acos(float64(dot))
	sinTheta := math.Sin(theta)
	s0 := float32(math.Sin((1-float64(t))*theta) / sinTheta)
	s1 := float32(math.Sin(float64(t)*theta) / sinTheta)

	return Quat{
		X: a.X*s0 + b.X*s1,
		Y: a.Y*s0 + b.Y*s1,
		Z: a.Z*s0 + b.Z*s1,
		W: a.W*s0 + b.W*s1,
	}.Normalize()
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// ApproxEqual reports whether q and other represent the same rotation
// within eps per component, treating q and -q as equal.
func (q Quat) ApproxEqual(other Quat, eps float32) bool {
	if q.Dot(other) < 0 {
		other = other.Negate()
	}
	return absf(q.X-other.X) <= eps && absf(q.Y-other.Y) <= eps &&
		absf(q.Z-other.Z) <= eps && absf(q.W-other.W) <= eps
}
