package camera

import (
	"testing"

	"github.com/chewxy/math32"
)

const tol = 1e-5

func near(a, b float32) bool { return math32.Abs(a-b) < tol }

func matNear(a, b Mat4) bool {
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestInvertRoundTrip(t *testing.T) {
	m := Translation(1, 2, 3).Mul(Scale(0.5)).Mul(RotationY(0.3)).Mul(RotationX(-1.1))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("matrix should be invertible")
	}
	if got := m.Mul(inv); !matNear(got, Identity()) {
		t.Fatalf("m·inv = %v", got)
	}
	if _, ok := (Mat4{}).Invert(); ok {
		t.Fatal("zero matrix must not invert")
	}
}

func TestTranslationMovesRowVector(t *testing.T) {
	p, w := Translation(1, 2, 3).Transform(Vec3{1, 1, 1}, 1)
	if p != (Vec3{2, 3, 4}) || w != 1 {
		t.Fatalf("got %+v w=%v", p, w)
	}
	d, _ := Translation(1, 2, 3).Transform(Vec3{1, 1, 1}, 0)
	if d != (Vec3{1, 1, 1}) {
		t.Fatalf("direction should be unaffected, got %+v", d)
	}
}

func TestLookAtPutsTargetOnNegativeZ(t *testing.T) {
	view := LookAt(Vec3{0, 0, 2}, Vec3{}, Vec3{0, 1, 0})
	p, _ := view.Transform(Vec3{}, 1)
	if !near(p.X, 0) || !near(p.Y, 0) || !near(p.Z, -2) {
		t.Fatalf("target in view space = %+v, want (0,0,-2)", p)
	}
}

func TestProjectionDepthRange(t *testing.T) {
	proj := PerspectiveFov(FieldOfView, 1.5, NearPlane, FarPlane)
	for _, tc := range []struct {
		z, want float32
	}{{-NearPlane, 0}, {-FarPlane, 1}} {
		p, w := proj.Transform(Vec3{0, 0, tc.z}, 1)
		if got := p.Z / w; math32.Abs(got-tc.want) > 1e-3 {
			t.Fatalf("depth at z=%v is %v, want %v", tc.z, got, tc.want)
		}
	}
}

func TestUpdateSmoothsTowardTarget(t *testing.T) {
	c := New(1200, 800)
	if !near(c.Aspect(), 1.5) {
		t.Fatalf("aspect = %v", c.Aspect())
	}
	c.Update(100, 0, 0, 0, 0)
	if !near(c.rdx, 10) {
		t.Fatalf("rdx after one step = %v, want 10", c.rdx)
	}
	for i := 0; i < 200; i++ {
		c.Update(100, 0, 0, 0, 0)
	}
	if math32.Abs(c.rdx-100) > 1e-3 {
		t.Fatalf("rdx should converge to 100, got %v", c.rdx)
	}

	c.SetRotation(100, 0)
	if c.rdx != 0 || c.rx != 100 {
		t.Fatalf("commit: rx=%v rdx=%v", c.rx, c.rdx)
	}
	want := RotationY(100.0 / rotationDivisor).Mul(RotationX(0))
	if !matNear(c.Rotation(), want) {
		t.Fatal("rotation does not match committed offset")
	}
}

func TestZoomMovesEye(t *testing.T) {
	c := New(800, 600)
	for i := 0; i < 300; i++ {
		c.Update(0, 0, 0, 0, -1)
	}
	eye := c.Eye()
	if !near(eye[2], 1) || eye[3] != 0 {
		t.Fatalf("eye = %v, want z=1 w=0", eye)
	}
	c.Resize(0, 0)
	if !near(c.Aspect(), 800.0/600) {
		t.Fatal("zero-size resize should keep aspect")
	}
}

func TestPanShiftsViewTarget(t *testing.T) {
	c := New(800, 600)
	c.SetTranslation(500, 0)
	p, _ := c.View().Transform(Vec3{-1, 0, 0}, 1)
	if !near(p.X, 0) || !near(p.Y, 0) {
		t.Fatalf("panned target should be centred, got %+v", p)
	}
}
