// Package scene holds the drawables composited over the captured desktop:
// a ground grid, a test triangle and an STL mesh. Each owns its shaders and
// buffers and reads the camera once per draw.
package scene

import (
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/camera"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/shader"
)

var log = logging.L("scene")

// Camera is what drawables read per frame.
type Camera interface {
	View() camera.Mat4
	Projection() camera.Mat4
	Rotation() camera.Mat4
	Eye() [4]float32
}

// Drawable is a component of the frame. Initialize runs once on the render
// thread before the first Draw; Release frees everything Initialize made.
type Drawable interface {
	Initialize(gc *gpu.GraphicsContext) error
	Draw(gc *gpu.GraphicsContext, cam Camera, time float64) error
	Release()
}

// ProgramLoader compiles and links a shader program.
type ProgramLoader interface {
	Load(dev gpu.Device, spec shader.ProgramSpec) (*shader.Program, error)
}

const (
	PositionColorStride       = 28
	PositionColorNormalStride = 40
)

var (
	PositionColorLayout = []gpu.InputElement{
		{Semantic: "POSITION", Format: gpu.FormatR32G32B32Float, Offset: 0},
		{Semantic: "COLOR", Format: gpu.FormatR32G32B32A32Float, Offset: 12},
	}
	PositionColorNormalLayout = []gpu.InputElement{
		{Semantic: "POSITION", Format: gpu.FormatR32G32B32Float, Offset: 0},
		{Semantic: "COLOR", Format: gpu.FormatR32G32B32A32Float, Offset: 12},
		{Semantic: "NORMAL", Format: gpu.FormatR32G32B32Float, Offset: 28},
	}
)

func appendPositionColor(b []byte, p camera.Vec3, c [4]float32) []byte {
	return gpu.AppendFloat32s(b, p.X, p.Y, p.Z, c[0], c[1], c[2], c[3])
}

func appendPositionColorNormal(b []byte, p camera.Vec3, c [4]float32, n camera.Vec3) []byte {
	b = appendPositionColor(b, p, c)
	return gpu.AppendFloat32s(b, n.X, n.Y, n.Z)
}

func appendMat(b []byte, m camera.Mat4) []byte {
	return gpu.AppendFloat32s(b, m[:]...)
}

// MVPSize is the byte size of the model/view/projection constant buffer.
var MVPSize = gpu.RoundUp16(3 * 64)

// MVPWorldEyeSize adds the inverse-transpose world matrix and the eye vector.
var MVPWorldEyeSize = gpu.RoundUp16(4*64 + 16)

// EncodeMVP packs the three matrices transposed for HLSL's column-major
// constant layout.
func EncodeMVP(model, view, proj camera.Mat4) []byte {
	b := make([]byte, 0, MVPSize)
	b = appendMat(b, model.Transpose())
	b = appendMat(b, view.Transpose())
	b = appendMat(b, proj.Transpose())
	return b[:MVPSize]
}

// EncodeMVPWorldEye is EncodeMVP followed by the inverse world matrix
// (transposed like the others, which makes it the inverse-transpose the
// shader expects for normals) and the eye vector.
func EncodeMVPWorldEye(model, view, proj, worldInv camera.Mat4, eye [4]float32) []byte {
	b := make([]byte, 0, MVPWorldEyeSize)
	b = append(b, EncodeMVP(model, view, proj)...)
	b = appendMat(b, worldInv.Transpose())
	b = gpu.AppendFloat32s(b, eye[:]...)
	return b[:MVPWorldEyeSize]
}

func createVertexBuffer(dev gpu.Device, data []byte) (gpu.Buffer, error) {
	buf, err := dev.CreateBuffer(gpu.BufferDesc{
		ByteWidth: uint32(len(data)),
		Usage:     gpu.UsageDefault,
		BindFlags: gpu.BindVertexBuffer,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	return buf, nil
}

func createConstantBuffer(dev gpu.Device, size int) (gpu.Buffer, error) {
	buf, err := dev.CreateBuffer(gpu.BufferDesc{
		ByteWidth: uint32(gpu.RoundUp16(size)),
		Usage:     gpu.UsageDefault,
		BindFlags: gpu.BindConstantBuffer,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create constant buffer: %w", err)
	}
	return buf, nil
}
