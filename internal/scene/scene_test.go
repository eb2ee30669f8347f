package scene

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/breeze-rmm/deskmirror/internal/camera"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/gpu/fakegpu"
	"github.com/breeze-rmm/deskmirror/internal/shader"
	"github.com/breeze-rmm/deskmirror/internal/stl"
)

func testLoader() *shader.Loader {
	l := shader.NewLoader("assets", &fakegpu.Compiler{})
	l.ReadFile = func(path string) ([]byte, error) { return []byte("// " + path), nil }
	return l
}

func float(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestGridVertices(t *testing.T) {
	v := GridVertices(GridCells, GridSpacing)
	if len(v) != (GridCells+1)*4 {
		t.Fatalf("len = %d, want %d", len(v), (GridCells+1)*4)
	}
	// First line runs along Z at x = -1.5.
	if v[0] != (camera.Vec3{X: -1.5, Z: 1.5}) || v[1] != (camera.Vec3{X: -1.5, Z: -1.5}) {
		t.Fatalf("first line = %+v %+v", v[0], v[1])
	}
	if v[2] != (camera.Vec3{X: 1.5, Z: -1.5}) || v[3] != (camera.Vec3{X: -1.5, Z: -1.5}) {
		t.Fatalf("second line = %+v %+v", v[2], v[3])
	}
	for _, p := range v {
		if p.Y != 0 {
			t.Fatalf("grid vertex off the XZ plane: %+v", p)
		}
	}
}

func TestEncodeSizes(t *testing.T) {
	if MVPSize != 192 || MVPWorldEyeSize != 272 {
		t.Fatalf("sizes = %d/%d", MVPSize, MVPWorldEyeSize)
	}
	m := camera.Translation(1, 2, 3)
	b := EncodeMVP(m, camera.Identity(), camera.Identity())
	if len(b) != MVPSize {
		t.Fatalf("len = %d", len(b))
	}
	// Transposed translation: x offset lands in row 0, column 3.
	if got := float(b, 3); got != 1 {
		t.Fatalf("model[0][3] = %v, want 1", got)
	}
	e := EncodeMVPWorldEye(m, m, m, m, [4]float32{0, 0, -2, 0})
	if len(e) != MVPWorldEyeSize || float(e, 66) != -2 {
		t.Fatalf("len = %d eye.z = %v", len(e), float(e, 66))
	}
}

func TestGridDraw(t *testing.T) {
	b := fakegpu.New(gpu.Size{Width: 800, Height: 600})
	gc := b.GraphicsContext()
	g := NewGrid(testLoader())
	if err := g.Initialize(gc); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	cam := camera.New(800, 600)
	if err := g.Draw(gc, cam, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	d := b.Context.Draws
	if len(d) != 1 || d[0].VertexCount != 52 || d[0].Topology != gpu.TopologyLineList || d[0].Stride != PositionColorStride {
		t.Fatalf("draws = %+v", d)
	}
	if b.Context.Updates != 1 || b.Context.VSConstants[0] == nil {
		t.Fatal("constant buffer must be updated and bound")
	}
	g.Release()
	if n := b.Device.Live(); n != 0 {
		t.Fatalf("%d objects leaked: %v", n, b.Device.LiveKinds())
	}
}

func TestTriangleDraw(t *testing.T) {
	b := fakegpu.New(gpu.Size{Width: 800, Height: 600})
	gc := b.GraphicsContext()
	tr := NewTriangle(testLoader())
	if err := tr.Initialize(gc); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := tr.Draw(gc, nil, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	d := b.Context.Draws[0]
	if d.VertexCount != 3 || d.Topology != gpu.TopologyTriangleList {
		t.Fatalf("draw = %+v", d)
	}
	data := d.VertexBuffer.(*fakegpu.Buffer).Data
	if len(data) != 3*PositionColorStride || float(data, 1) != 1 || float(data, 3) != 1 {
		t.Fatalf("unexpected vertex data % x", data[:28])
	}
	tr.Release()
}

func TestInitializeFailureReleasesPartialState(t *testing.T) {
	for _, op := range []string{"CreatePixelShader", "CreateInputLayout", "CreateBuffer", "CreateRasterizerState"} {
		t.Run(op, func(t *testing.T) {
			b := fakegpu.New(gpu.Size{Width: 8, Height: 8})
			b.Device.FailNext(op)
			err := NewMesh(testLoader()).Initialize(b.GraphicsContext())
			if err == nil || !strings.Contains(err.Error(), op) {
				t.Fatalf("err = %v", err)
			}
			if n := b.Device.Live(); n != 0 {
				t.Fatalf("%d objects leaked: %v", n, b.Device.LiveKinds())
			}
		})
	}
}

func TestShaderCompileFailureIsReported(t *testing.T) {
	l := testLoader()
	l.Compiler = &fakegpu.Compiler{Fail: map[string]bool{"GridShaderPS.hlsl": true}}
	b := fakegpu.New(gpu.Size{Width: 8, Height: 8})
	err := NewGrid(l).Initialize(b.GraphicsContext())
	if err == nil || !strings.Contains(err.Error(), "GridShaderPS.hlsl") {
		t.Fatalf("err = %v", err)
	}
}

func TestMeshUploadAndDraw(t *testing.T) {
	b := fakegpu.New(gpu.Size{Width: 800, Height: 600})
	gc := b.GraphicsContext()
	m := NewMesh(testLoader())
	if err := m.Initialize(gc); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	cam := camera.New(800, 600)

	if err := m.Draw(gc, cam, 0); err != nil || len(b.Context.Draws) != 0 {
		t.Fatalf("unloaded mesh must not draw (err=%v draws=%d)", err, len(b.Context.Draws))
	}

	f := &stl.File{
		Name: "tri.stl",
		Facets: []stl.Facet{
			{Normal: stl.Vec3{Y: 1}, V1: stl.Vec3{}, V2: stl.Vec3{X: 2}, V3: stl.Vec3{Z: 2}},
			{Normal: stl.Vec3{Y: 1}, V1: stl.Vec3{}, V2: stl.Vec3{Z: 2}, V3: stl.Vec3{X: 2, Y: 4}},
		},
	}
	f.Stats = stl.ComputeStats(f.Facets)
	if err := m.Upload(gc, f); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.Draw(gc, cam, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	d := b.Context.Draws
	if len(d) != 1 || d[0].VertexCount != 6 || d[0].Stride != PositionColorNormalStride {
		t.Fatalf("draws = %+v", d)
	}
	if b.Context.Rasterizer != nil {
		t.Fatal("rasterizer state should be restored after the mesh draw")
	}

	data := d[0].VertexBuffer.(*fakegpu.Buffer).Data
	if len(data) != 6*PositionColorNormalStride {
		t.Fatalf("vertex bytes = %d", len(data))
	}
	// Second vertex: green tint, normal (0,1,0).
	second := data[PositionColorNormalStride:]
	if float(second, 4) != 1 || float(second, 8) != 1 {
		t.Fatalf("second vertex color/normal wrong: % x", second[:40])
	}

	// Mesh spans y in [0,4]: centred then lifted by half its height, so
	// the lowest point sits at y=0 before scaling.
	low, _ := m.Model(camera.Identity()).Transform(camera.Vec3{}, 1)
	if low.Y != 0 {
		t.Fatalf("lowest point after model transform y = %v, want 0", low.Y)
	}

	if err := m.Upload(gc, f); err != nil {
		t.Fatalf("re-upload: %v", err)
	}
	m.Release()
	if n := b.Device.Live(); n != 0 {
		t.Fatalf("%d objects leaked: %v", n, b.Device.LiveKinds())
	}
}
