// Package camera implements the orbit camera driven by mouse drags: left
// drag rotates the model, right drag pans, scroll zooms. Drag deltas are
// smoothed toward their targets each update tick.
package camera

import "math"

const (
	FieldOfView = 70 * math.Pi / 180
	NearPlane   = 0.01
	FarPlane    = 1000

	rotationDivisor    = 250
	translationDivisor = 500
	smoothing          = 10
)

var (
	home = Vec3{0, 0, 2}
	up   = Vec3{0, 1, 0}
)

// Camera holds committed rotation/translation offsets plus the smoothed
// in-flight drag deltas.
type Camera struct {
	aspect float32

	rx, ry float32 // committed rotation
	tx, ty float32 // committed translation

	rdx, rdy float32 // smoothed rotation drag
	tdx, tdy float32 // smoothed translation drag
	zoom     float32
}

func New(width, height int) *Camera {
	c := &Camera{}
	c.Resize(width, height)
	return c
}

// Resize updates the aspect ratio; a zero height is ignored.
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

func (c *Camera) Aspect() float32 { return c.aspect }

// Update moves each smoothed value a tenth of the way to its target.
func (c *Camera) Update(rdx, rdy, tdx, tdy, zoom float32) {
	c.rdx += (rdx - c.rdx) / smoothing
	c.rdy += (rdy - c.rdy) / smoothing
	c.tdx += (tdx - c.tdx) / smoothing
	c.tdy += (tdy - c.tdy) / smoothing
	c.zoom += (zoom - c.zoom) / smoothing
}

// SetRotation commits a finished rotation drag.
func (c *Camera) SetRotation(dx, dy float32) {
	c.rx += dx
	c.ry += dy
	c.rdx, c.rdy = 0, 0
}

// SetTranslation commits a finished pan drag.
func (c *Camera) SetTranslation(dx, dy float32) {
	c.tx += dx
	c.ty += dy
	c.tdx, c.tdy = 0, 0
}

func (c *Camera) Projection() Mat4 {
	return PerspectiveFov(FieldOfView, c.aspect, NearPlane, FarPlane)
}

func (c *Camera) Rotation() Mat4 {
	return RotationY((c.rx + c.rdx) / rotationDivisor).Mul(RotationX((c.ry + c.rdy) / rotationDivisor))
}

func (c *Camera) View() Mat4 {
	pan := Vec3{-(c.tdx + c.tx) / translationDivisor, (c.tdy + c.ty) / translationDivisor, 0}
	eye := home.Add(pan).Add(Vec3{0, 0, c.zoom})
	return LookAt(eye, pan, up)
}

// Eye is the un-panned eye position, w = 0.
func (c *Camera) Eye() [4]float32 {
	return [4]float32{home.X, home.Y, home.Z + c.zoom, 0}
}
