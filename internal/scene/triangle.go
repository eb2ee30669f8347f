package scene

import (
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/camera"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/shader"
)

var TriangleProgram = shader.ProgramSpec{
	Name:       "triangle",
	VertexFile: "SimpleShader.hlsl",
	PixelFile:  "SimpleShaderPS.hlsl",
	Layout:     PositionColorLayout,
}

// Triangle is a clip-space RGB triangle; it ignores the camera and is
// useful to confirm the pipeline draws at all.
type Triangle struct {
	loader   ProgramLoader
	program  *shader.Program
	vertices gpu.Buffer
}

func NewTriangle(loader ProgramLoader) *Triangle {
	return &Triangle{loader: loader}
}

func (t *Triangle) Initialize(gc *gpu.GraphicsContext) error {
	prog, err := t.loader.Load(gc.Device, TriangleProgram)
	if err != nil {
		return fmt.Errorf("triangle: %w", err)
	}
	t.program = prog

	var data []byte
	data = appendPositionColor(data, camera.Vec3{X: 0, Y: 1}, [4]float32{1, 0, 0, 1})
	data = appendPositionColor(data, camera.Vec3{X: 1, Y: -1}, [4]float32{0, 1, 0, 1})
	data = appendPositionColor(data, camera.Vec3{X: -1, Y: -1}, [4]float32{0, 0, 1, 1})
	if t.vertices, err = createVertexBuffer(gc.Device, data); err != nil {
		t.Release()
		return fmt.Errorf("triangle: %w", err)
	}
	return nil
}

func (t *Triangle) Draw(gc *gpu.GraphicsContext, _ Camera, _ float64) error {
	ctx := gc.Context
	t.program.Bind(ctx)
	ctx.IASetPrimitiveTopology(gpu.TopologyTriangleList)
	ctx.IASetVertexBuffer(t.vertices, PositionColorStride, 0)
	ctx.Draw(3, 0)
	return nil
}

func (t *Triangle) Release() {
	gpu.SafeRelease(t.vertices)
	t.vertices = nil
	t.program.Release()
	t.program = nil
}
