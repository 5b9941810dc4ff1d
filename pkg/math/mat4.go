package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 = mgl32.Mat4

// Identity returns an identity matrix.
func Identity() Mat4 {
	return mgl32.Ident4()
}

// Perspective returns a perspective projection matrix.
// fovY is in degrees, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far)
}

// ModelMatrix composes T * Rz(roll) * Ry(yaw) * Rx(pitch) * S.
// Vertices are scaled first and translated last. Angles are in degrees.
func ModelMatrix(pos Vec3, yaw, pitch, roll float32, scale Vec3) Mat4 {
	t := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(roll))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(yaw))
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(pitch))
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())

	return t.Mul4(rz).Mul4(ry).Mul4(rx).Mul4(s)
}

// NormalMatrix returns the inverse-transpose of the upper-left 3x3 of m,
// embedded in a 4x4 with zero translation. The inverse is computed with the
// adjugate; a singular block yields the identity.
func NormalMatrix(m Mat4) Mat4 {
	// a[row][col] of the 3x3 block
	a00, a01, a02 := m[0], m[4], m[8]
	a10, a11, a12 := m[1], m[5], m[9]
	a20, a21, a22 := m[2], m[6], m[10]

	// cofactors
	c00 := a11*a22 - a12*a21
	c01 := -(a10*a22 - a12*a20)
	c02 := a10*a21 - a11*a20
	c10 := -(a01*a22 - a02*a21)
	c11 := a00*a22 - a02*a20
	c12 := -(a00*a21 - a01*a20)
	c20 := a01*a12 - a02*a11
	c21 := -(a00*a12 - a02*a10)
	c22 := a00*a11 - a01*a10

	det := a00*c00 + a01*c01 + a02*c02
	if det == 0 {
		return Identity()
	}
	inv := 1 / det

	// inverse = adj/det = C^T/det, so inverse-transpose = C/det.
	// Column-major: element (row r, col c) lives at c*4+r.
	return Mat4{
		c00 * inv, c10 * inv, c20 * inv, 0,
		c01 * inv, c11 * inv, c21 * inv, 0,
		c02 * inv, c12 * inv, c22 * inv, 0,
		0, 0, 0, 1,
	}
}

// BasisView builds a view matrix directly from an orthonormal camera basis
// (right u, up v, forward n) and a world position. Each basis vector
// occupies one matrix row; the translation column holds -basis.pos.
func BasisView(u, v, n, pos Vec3) Mat4 {
	return Mat4{
		u.X(), v.X(), n.X(), 0,
		u.Y(), v.Y(), n.Y(), 0,
		u.Z(), v.Z(), n.Z(), 0,
		-u.Dot(pos), -v.Dot(pos), -n.Dot(pos), 1,
	}
}

// TransformPoint transforms a 3D point by m (assumes w=1) with perspective
// divide when w is not 1.
func TransformPoint(m Mat4, p Vec3) Vec3 {
	r := m.Mul4x1(p.Vec4(1))
	if w := r.W(); w != 0 && w != 1 {
		return r.Vec3().Mul(1 / w)
	}
	return r.Vec3()
}
