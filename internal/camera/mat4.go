package camera

import "github.com/chewxy/math32"

// Vec3 is a 3-component float32 vector.
type Vec3 struct{ X, Y, Z float32 }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Dot(b Vec3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

func (a Vec3) Normalize() Vec3 {
	l := math32.Sqrt(a.Dot(a))
	if l == 0 {
		return a
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Mat4 is a row-major 4x4 matrix for row vectors (v' = v·M), so a chain
// A·B applies A first. Element (r, c) is at index r*4+c.
type Mat4 [16]float32

func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns element (r, c).
func (m Mat4) At(r, c int) float32 { return m[r*4+c] }

// Mul returns m·n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var s float32
			for k := 0; k < 4; k++ {
				s += m[r*4+k] * n[k*4+c]
			}
			out[r*4+c] = s
		}
	}
	return out
}

func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// Transform applies m to the row vector (v, w).
func (m Mat4) Transform(v Vec3, w float32) (Vec3, float32) {
	in := [4]float32{v.X, v.Y, v.Z, w}
	var out [4]float32
	for c := 0; c < 4; c++ {
		for k := 0; k < 4; k++ {
			out[c] += in[k] * m[k*4+c]
		}
	}
	return Vec3{out[0], out[1], out[2]}, out[3]
}

// Invert returns the inverse of m; ok is false when m is singular.
func (m Mat4) Invert() (inv Mat4, ok bool) {
	// Cofactor expansion over 2x2 sub-determinants.
	a := m
	s0 := a[0]*a[5] - a[4]*a[1]
	s1 := a[0]*a[6] - a[4]*a[2]
	s2 := a[0]*a[7] - a[4]*a[3]
	s3 := a[1]*a[6] - a[5]*a[2]
	s4 := a[1]*a[7] - a[5]*a[3]
	s5 := a[2]*a[7] - a[6]*a[3]

	c5 := a[10]*a[15] - a[14]*a[11]
	c4 := a[9]*a[15] - a[13]*a[11]
	c3 := a[9]*a[14] - a[13]*a[10]
	c2 := a[8]*a[15] - a[12]*a[11]
	c1 := a[8]*a[14] - a[12]*a[10]
	c0 := a[8]*a[13] - a[12]*a[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if math32.Abs(det) < 1e-12 {
		return Mat4{}, false
	}
	d := 1 / det

	inv[0] = (a[5]*c5 - a[6]*c4 + a[7]*c3) * d
	inv[1] = (-a[1]*c5 + a[2]*c4 - a[3]*c3) * d
	inv[2] = (a[13]*s5 - a[14]*s4 + a[15]*s3) * d
	inv[3] = (-a[9]*s5 + a[10]*s4 - a[11]*s3) * d

	inv[4] = (-a[4]*c5 + a[6]*c2 - a[7]*c1) * d
	inv[5] = (a[0]*c5 - a[2]*c2 + a[3]*c1) * d
	inv[6] = (-a[12]*s5 + a[14]*s2 - a[15]*s1) * d
	inv[7] = (a[8]*s5 - a[10]*s2 + a[11]*s1) * d

	inv[8] = (a[4]*c4 - a[5]*c2 + a[7]*c0) * d
	inv[9] = (-a[0]*c4 + a[1]*c2 - a[3]*c0) * d
	inv[10] = (a[12]*s4 - a[13]*s2 + a[15]*s0) * d
	inv[11] = (-a[8]*s4 + a[9]*s2 - a[11]*s0) * d

	inv[12] = (-a[4]*c3 + a[5]*c1 - a[6]*c0) * d
	inv[13] = (a[0]*c3 - a[1]*c1 + a[2]*c0) * d
	inv[14] = (-a[12]*s3 + a[13]*s1 - a[14]*s0) * d
	inv[15] = (a[8]*s3 - a[9]*s1 + a[10]*s0) * d
	return inv, true
}

func Translation(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

func Scale(s float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = s, s, s
	return m
}

func RotationX(rad float32) Mat4 {
	c, s := math32.Cos(rad), math32.Sin(rad)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

func RotationY(rad float32) Mat4 {
	c, s := math32.Cos(rad), math32.Sin(rad)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// PerspectiveFov is a right-handed projection mapping depth to [0,1].
func PerspectiveFov(fovY, aspect, near, far float32) Mat4 {
	y := 1 / math32.Tan(fovY/2)
	x := y / aspect
	var m Mat4
	m[0] = x
	m[5] = y
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// LookAt is a right-handed view matrix.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return Mat4{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}
