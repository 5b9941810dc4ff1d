// Package math provides the vector and matrix helpers shared by the scene,
// camera and picking code. Types come from mgl32; this package only adds
// the operations the composer needs on top of them.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the 3-component vector used across the engine.
type Vec3 = mgl32.Vec3

// WorldUp is the fixed world up axis.
var WorldUp = Vec3{0, 1, 0}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged instead of producing NaNs.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// RotateVec rotates v about axis k by angle degrees (Rodrigues' formula).
// The axis does not need to be unit length.
func RotateVec(v, k Vec3, angle float32) Vec3 {
	k = Normalize(k)
	theta := float64(mgl32.DegToRad(angle))
	c := float32(math.Cos(theta))
	s := float32(math.Sin(theta))

	// v*c + (k x v)*s + k*(k.v)*(1-c)
	return v.Mul(c).
		Add(k.Cross(v).Mul(s)).
		Add(k.Mul(k.Dot(v) * (1 - c)))
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(a float32) float32 {
	w := float32(math.Mod(float64(a), 360))
	if w < 0 {
		w += 360
	}
	if w >= 360 {
		w = 0
	}
	return w
}

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}
