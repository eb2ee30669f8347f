package fakegpu

import (
	"time"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// ColorClear is one ClearRenderTargetView call.
type ColorClear struct {
	Target gpu.RenderTargetView
	Color  gpu.Color
}

// DepthClear is one ClearDepthStencilView call.
type DepthClear struct {
	Target  gpu.DepthStencilView
	Flags   gpu.ClearFlags
	Depth   float32
	Stencil uint8
}

// DrawCall captures the pipeline state at the moment of a Draw.
type DrawCall struct {
	VertexCount  uint32
	StartVertex  uint32
	RenderTarget gpu.RenderTargetView
	DepthStencil gpu.DepthStencilView
	DepthState   gpu.DepthStencilState
	Viewport     gpu.Viewport
	Topology     gpu.Topology
	VertexBuffer gpu.Buffer
	Stride       uint32
	Resource0    gpu.ShaderResourceView
	VS           gpu.VertexShader
	PS           gpu.PixelShader
}

// Context records the bound pipeline state and every clear, update and draw.
type Context struct {
	Viewport     gpu.Viewport
	RenderTarget gpu.RenderTargetView
	DepthStencil gpu.DepthStencilView
	DepthState   gpu.DepthStencilState
	Rasterizer   gpu.RasterizerState
	Layout       gpu.InputLayout
	Topology     gpu.Topology
	VertexBuffer gpu.Buffer
	Stride       uint32
	VS           gpu.VertexShader
	PS           gpu.PixelShader
	VSConstants  [4]gpu.Buffer
	PSConstants  [4]gpu.Buffer
	Resources    [4]gpu.ShaderResourceView
	Samplers     [4]gpu.SamplerState

	ColorClears []ColorClear
	DepthClears []DepthClear
	Draws       []DrawCall
	Updates     int
	// Log is the ordered list of call names.
	Log []string
	// OnDraw, if set, runs inside Draw; tests panic from it to simulate a
	// failure in the middle of a draw.
	OnDraw   func()
	Released bool
}

func (c *Context) log(name string) { c.Log = append(c.Log, name) }

// Reset drops recorded calls but keeps bound state.
func (c *Context) Reset() {
	c.ColorClears, c.DepthClears, c.Draws, c.Log, c.Updates = nil, nil, nil, nil, 0
}

func (c *Context) Release() { c.Released = true }

func (c *Context) RSSetViewport(vp gpu.Viewport) {
	c.log("RSSetViewport")
	c.Viewport = vp
}

func (c *Context) RSSetState(s gpu.RasterizerState) {
	c.log("RSSetState")
	c.Rasterizer = s
}

func (c *Context) OMSetRenderTargets(rtv gpu.RenderTargetView, dsv gpu.DepthStencilView) {
	c.log("OMSetRenderTargets")
	c.RenderTarget, c.DepthStencil = rtv, dsv
}

func (c *Context) OMSetDepthStencilState(s gpu.DepthStencilState, _ uint32) {
	c.log("OMSetDepthStencilState")
	c.DepthState = s
}

func (c *Context) ClearRenderTargetView(rtv gpu.RenderTargetView, col gpu.Color) {
	c.log("ClearRenderTargetView")
	c.ColorClears = append(c.ColorClears, ColorClear{Target: rtv, Color: col})
}

func (c *Context) ClearDepthStencilView(dsv gpu.DepthStencilView, flags gpu.ClearFlags, depth float32, stencil uint8) {
	c.log("ClearDepthStencilView")
	c.DepthClears = append(c.DepthClears, DepthClear{Target: dsv, Flags: flags, Depth: depth, Stencil: stencil})
}

func (c *Context) IASetInputLayout(l gpu.InputLayout) {
	c.log("IASetInputLayout")
	c.Layout = l
}

func (c *Context) IASetPrimitiveTopology(t gpu.Topology) {
	c.log("IASetPrimitiveTopology")
	c.Topology = t
}

func (c *Context) IASetVertexBuffer(b gpu.Buffer, stride, _ uint32) {
	c.log("IASetVertexBuffer")
	c.VertexBuffer, c.Stride = b, stride
}

func (c *Context) VSSetShader(vs gpu.VertexShader) {
	c.log("VSSetShader")
	c.VS = vs
}

func (c *Context) PSSetShader(ps gpu.PixelShader) {
	c.log("PSSetShader")
	c.PS = ps
}

func (c *Context) VSSetConstantBuffer(slot uint32, b gpu.Buffer) {
	c.log("VSSetConstantBuffer")
	c.VSConstants[slot] = b
}

func (c *Context) PSSetConstantBuffer(slot uint32, b gpu.Buffer) {
	c.log("PSSetConstantBuffer")
	c.PSConstants[slot] = b
}

func (c *Context) PSSetShaderResource(slot uint32, srv gpu.ShaderResourceView) {
	c.log("PSSetShaderResource")
	c.Resources[slot] = srv
}

func (c *Context) PSSetSampler(slot uint32, s gpu.SamplerState) {
	c.log("PSSetSampler")
	c.Samplers[slot] = s
}

func (c *Context) UpdateSubresource(res gpu.Resource, data []byte) {
	c.log("UpdateSubresource")
	c.Updates++
	if b, ok := res.(*Buffer); ok {
		b.Data = append(b.Data[:0], data...)
	}
}

func (c *Context) Draw(count, start uint32) {
	c.log("Draw")
	c.Draws = append(c.Draws, DrawCall{
		VertexCount:  count,
		StartVertex:  start,
		RenderTarget: c.RenderTarget,
		DepthStencil: c.DepthStencil,
		DepthState:   c.DepthState,
		Viewport:     c.Viewport,
		Topology:     c.Topology,
		VertexBuffer: c.VertexBuffer,
		Stride:       c.Stride,
		Resource0:    c.Resources[0],
		VS:           c.VS,
		PS:           c.PS,
	})
	if c.OnDraw != nil {
		c.OnDraw()
	}
}

// SwapChain hands out a single backbuffer texture at the current size.
type SwapChain struct {
	dev    *Device
	size   gpu.Size
	format gpu.Format

	ResizeCalls []gpu.Size
	GetBuffers  int
	Presents    int
	// PresentErr is returned from every Present when set.
	PresentErr error
	buffers    []*Texture
	Released   bool
}

// Size is the current buffer size.
func (s *SwapChain) Size() gpu.Size { return s.size }

func (s *SwapChain) Release() { s.Released = true }

func (s *SwapChain) ResizeBuffers(count uint32, size gpu.Size, format gpu.Format) error {
	if err := s.dev.enter("ResizeBuffers"); err != nil {
		return err
	}
	// Every outstanding buffer reference must be dropped before a resize.
	for _, b := range s.buffers {
		if !b.released {
			return &gpu.Error{Op: "ResizeBuffers", Code: gpu.CodeInvalidCall}
		}
	}
	s.buffers = nil
	s.ResizeCalls = append(s.ResizeCalls, size)
	s.size, s.format = size, format
	return nil
}

func (s *SwapChain) GetBuffer(index uint32) (gpu.Texture2D, error) {
	if err := s.dev.enter("GetBuffer"); err != nil {
		return nil, err
	}
	s.GetBuffers++
	t := s.dev.newTexture("Backbuffer", gpu.TextureDesc{
		Width:     uint32(s.size.Width),
		Height:    uint32(s.size.Height),
		MipLevels: 1,
		ArraySize: 1,
		Format:    s.format,
		BindFlags: gpu.BindRenderTarget,
	})
	s.buffers = append(s.buffers, t)
	return t, nil
}

func (s *SwapChain) Present(sync, flags uint32) error {
	s.Presents++
	return s.PresentErr
}

// Step is one scripted AcquireNextFrame outcome. A zero Step is a fresh frame.
type Step struct {
	Err  error
	Info gpu.FrameInfo
}

// Timeout is a scripted wait timeout.
var Timeout = Step{Err: &gpu.Error{Op: "AcquireNextFrame", Code: gpu.CodeWaitTimeout}}

// AccessLost is a scripted session loss.
var AccessLost = Step{Err: &gpu.Error{Op: "AcquireNextFrame", Code: gpu.CodeAccessLost}}

// Frame is a scripted successful acquire.
var Frame = Step{Info: gpu.FrameInfo{AccumulatedFrames: 1}}

// Duplication replays Script; once exhausted every acquire times out.
type Duplication struct {
	Object
	desc   gpu.DuplicationDesc
	Script []Step

	Acquires int
	Releases int
	// Misuse counts acquires while holding a frame and releases without one.
	Misuse int
	held   bool
	// Textures are the desktop images handed out, in order.
	Textures []*Texture
}

func (d *Duplication) Desc() gpu.DuplicationDesc { return d.desc }

// Held reports whether a frame is currently acquired.
func (d *Duplication) Held() bool { return d.held }

func (d *Duplication) AcquireNextFrame(timeout time.Duration) (gpu.FrameInfo, gpu.Texture2D, error) {
	if d.held {
		d.Misuse++
		return gpu.FrameInfo{}, nil, &gpu.Error{Op: "AcquireNextFrame", Code: gpu.CodeInvalidCall}
	}
	step := Timeout
	if len(d.Script) > 0 {
		step, d.Script = d.Script[0], d.Script[1:]
	}
	if step.Err != nil {
		return gpu.FrameInfo{}, nil, step.Err
	}
	d.Acquires++
	d.held = true
	tex := d.dev.newTexture("DesktopImage", gpu.TextureDesc{
		Width:     d.desc.Width,
		Height:    d.desc.Height,
		MipLevels: 1,
		ArraySize: 1,
		Format:    d.desc.Format,
		BindFlags: gpu.BindRenderTarget | gpu.BindShaderResource,
	})
	d.Textures = append(d.Textures, tex)
	return step.Info, tex, nil
}

func (d *Duplication) ReleaseFrame() error {
	if !d.held {
		d.Misuse++
		return &gpu.Error{Op: "ReleaseFrame", Code: gpu.CodeInvalidCall}
	}
	d.held = false
	d.Releases++
	return nil
}
