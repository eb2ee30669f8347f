package scene

import (
	"errors"
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/camera"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/shader"
	"github.com/breeze-rmm/deskmirror/internal/stl"
)

var MeshProgram = shader.ProgramSpec{
	Name:       "mesh",
	VertexFile: "MeshShader.hlsl",
	PixelFile:  "MeshShaderPS.hlsl",
	Layout:     PositionColorNormalLayout,
}

var facetColors = [3][4]float32{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}}

// Mesh draws a loaded STL model normalized to unit size and resting on the
// grid. Until Upload succeeds Draw does nothing.
type Mesh struct {
	loader  ProgramLoader
	program *shader.Program
	cb      gpu.Buffer
	solid   gpu.RasterizerState
	wire    gpu.RasterizerState
	// Wireframe selects the wireframe rasterizer state.
	Wireframe bool

	vertices gpu.Buffer
	count    uint32
	stats    stl.Stats
	name     string
}

func NewMesh(loader ProgramLoader) *Mesh {
	return &Mesh{loader: loader}
}

func (m *Mesh) Initialize(gc *gpu.GraphicsContext) error {
	prog, err := m.loader.Load(gc.Device, MeshProgram)
	if err != nil {
		return fmt.Errorf("mesh: %w", err)
	}
	m.program = prog

	if m.cb, err = createConstantBuffer(gc.Device, MVPWorldEyeSize); err != nil {
		m.Release()
		return fmt.Errorf("mesh: %w", err)
	}
	rs := gpu.RasterizerDesc{
		FillMode:              gpu.FillSolid,
		CullMode:              gpu.CullBack,
		DepthClipEnable:       true,
		AntialiasedLineEnable: true,
	}
	if m.solid, err = gc.Device.CreateRasterizerState(rs); err != nil {
		m.Release()
		return fmt.Errorf("mesh: create solid rasterizer state: %w", err)
	}
	rs.FillMode = gpu.FillWireframe
	if m.wire, err = gc.Device.CreateRasterizerState(rs); err != nil {
		m.Release()
		return fmt.Errorf("mesh: create wireframe rasterizer state: %w", err)
	}
	return nil
}

// MeshVertices expands facets into the per-vertex layout: each corner gets
// its facet normal and a red, green or blue tint.
func MeshVertices(facets []stl.Facet) []byte {
	data := make([]byte, 0, len(facets)*3*PositionColorNormalStride)
	for _, f := range facets {
		n := vec(f.Normal)
		for i, v := range [3]stl.Vec3{f.V1, f.V2, f.V3} {
			data = appendPositionColorNormal(data, vec(v), facetColors[i], n)
		}
	}
	return data
}

func vec(v stl.Vec3) camera.Vec3 { return camera.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Upload replaces the mesh geometry. A failed upload keeps the previous mesh.
func (m *Mesh) Upload(gc *gpu.GraphicsContext, f *stl.File) error {
	if len(f.Facets) == 0 {
		return errors.New("mesh: no facets")
	}
	buf, err := createVertexBuffer(gc.Device, MeshVertices(f.Facets))
	if err != nil {
		return fmt.Errorf("mesh %s: %w", f.Name, err)
	}
	gpu.SafeRelease(m.vertices)
	m.vertices = buf
	m.count = uint32(len(f.Facets) * 3)
	m.stats = f.Stats
	m.name = f.Name
	log.Info("mesh uploaded", logging.KeyPath, f.Name, "facets", len(f.Facets), "binary", f.Binary)
	return nil
}

// Loaded reports whether geometry has been uploaded.
func (m *Mesh) Loaded() bool { return m.vertices != nil }

// VertexCount is the number of vertices drawn per frame.
func (m *Mesh) VertexCount() uint32 { return m.count }

// Model centres the mesh, lifts it onto the grid plane, scales its largest
// extent to 1 and applies the camera rotation.
func (m *Mesh) Model(rotation camera.Mat4) camera.Mat4 {
	t := m.stats.Translate
	return camera.Translation(t.X, t.Y+m.stats.Size.Y/2, t.Z).
		Mul(camera.Scale(m.stats.Scale)).
		Mul(rotation)
}

func (m *Mesh) Draw(gc *gpu.GraphicsContext, cam Camera, _ float64) error {
	if !m.Loaded() {
		return nil
	}
	ctx := gc.Context
	ctx.IASetPrimitiveTopology(gpu.TopologyTriangleList)
	m.program.Bind(ctx)

	rot := cam.Rotation()
	worldInv, ok := rot.Invert()
	if !ok {
		worldInv = camera.Identity()
	}
	eye := cam.Eye()
	for i := range eye {
		eye[i] = -eye[i]
	}
	ctx.UpdateSubresource(m.cb, EncodeMVPWorldEye(m.Model(rot), cam.View(), cam.Projection(), worldInv, eye))
	ctx.VSSetConstantBuffer(0, m.cb)
	ctx.PSSetConstantBuffer(0, m.cb)

	if m.Wireframe {
		ctx.RSSetState(m.wire)
	} else {
		ctx.RSSetState(m.solid)
	}
	ctx.IASetVertexBuffer(m.vertices, PositionColorNormalStride, 0)
	ctx.Draw(m.count, 0)
	ctx.RSSetState(nil)
	return nil
}

func (m *Mesh) Release() {
	gpu.SafeRelease(m.vertices, m.wire, m.solid, m.cb)
	m.vertices, m.wire, m.solid, m.cb = nil, nil, nil, nil
	m.program.Release()
	m.program = nil
	m.count = 0
}
