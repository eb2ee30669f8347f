package app

// Mouse buttons as reported by the window collaborator.
const (
	ButtonLeft  = 0
	ButtonRight = 1
)

// dragState tracks the in-flight mouse drag. Left drag rotates, right drag
// pans; the delta is committed into the camera when the button is released.
type dragState struct {
	px, py float32 // cursor
	sx, sy float32 // drag start

	left, right bool

	rdx, rdy float32
	tdx, tdy float32
	zoom     float32
}

func (d *dragState) press(button int) {
	d.sx, d.sy = d.px, d.py
	switch button {
	case ButtonLeft:
		d.left = true
	case ButtonRight:
		d.right = true
	}
}

func (d *dragState) move(x, y float32) {
	d.px, d.py = x, y
	switch {
	case d.left:
		d.rdx, d.rdy = x-d.sx, y-d.sy
	case d.right:
		d.tdx, d.tdy = x-d.sx, y-d.sy
	}
}

// committer receives a finished drag.
type committer interface {
	SetRotation(dx, dy float32)
	SetTranslation(dx, dy float32)
}

func (d *dragState) release(c committer) {
	switch {
	case d.left:
		d.left = false
		c.SetRotation(d.rdx, d.rdy)
		d.rdx, d.rdy = 0, 0
	case d.right:
		d.right = false
		c.SetTranslation(d.tdx, d.tdy)
		d.tdx, d.tdy = 0, 0
	}
}

func (d *dragState) scroll(dy float32) { d.zoom -= dy / 10 }
