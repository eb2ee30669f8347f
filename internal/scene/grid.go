package scene

import (
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/camera"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/shader"
)

const (
	GridCells   = 12
	GridSpacing = 0.25
)

var (
	GridProgram = shader.ProgramSpec{
		Name:       "grid",
		VertexFile: "GridShader.hlsl",
		PixelFile:  "GridShaderPS.hlsl",
		Layout:     PositionColorLayout,
	}
	gridColor = [4]float32{0, 0, 1, 0}
)

// GridVertices returns the line-list vertices of a cells x cells grid on the
// XZ plane, centred on the origin.
func GridVertices(cells int, spacing float32) []camera.Vec3 {
	half := float32(cells) / 2
	out := make([]camera.Vec3, 0, (cells+1)*4)
	for i := 0; i <= cells; i++ {
		p := float32(i) - half
		out = append(out,
			camera.Vec3{X: p * spacing, Z: half * spacing},
			camera.Vec3{X: p * spacing, Z: -half * spacing},
			camera.Vec3{X: half * spacing, Z: p * spacing},
			camera.Vec3{X: -half * spacing, Z: p * spacing},
		)
	}
	return out
}

// Grid draws the ground grid, rotated with the model.
type Grid struct {
	loader   ProgramLoader
	program  *shader.Program
	vertices gpu.Buffer
	mvp      gpu.Buffer
	count    uint32
}

func NewGrid(loader ProgramLoader) *Grid {
	return &Grid{loader: loader}
}

func (g *Grid) Initialize(gc *gpu.GraphicsContext) error {
	prog, err := g.loader.Load(gc.Device, GridProgram)
	if err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	g.program = prog

	if g.mvp, err = createConstantBuffer(gc.Device, MVPSize); err != nil {
		g.Release()
		return fmt.Errorf("grid: %w", err)
	}

	verts := GridVertices(GridCells, GridSpacing)
	data := make([]byte, 0, len(verts)*PositionColorStride)
	for _, v := range verts {
		data = appendPositionColor(data, v, gridColor)
	}
	if g.vertices, err = createVertexBuffer(gc.Device, data); err != nil {
		g.Release()
		return fmt.Errorf("grid: %w", err)
	}
	g.count = uint32(len(verts))
	log.Info("grid initialized", "vertices", g.count)
	return nil
}

func (g *Grid) Draw(gc *gpu.GraphicsContext, cam Camera, _ float64) error {
	ctx := gc.Context
	ctx.IASetPrimitiveTopology(gpu.TopologyLineList)
	g.program.Bind(ctx)

	ctx.UpdateSubresource(g.mvp, EncodeMVP(cam.Rotation(), cam.View(), cam.Projection()))
	ctx.VSSetConstantBuffer(0, g.mvp)
	ctx.IASetVertexBuffer(g.vertices, PositionColorStride, 0)
	ctx.Draw(g.count, 0)
	return nil
}

func (g *Grid) Release() {
	gpu.SafeRelease(g.vertices, g.mvp)
	g.vertices, g.mvp = nil, nil
	g.program.Release()
	g.program = nil
}
