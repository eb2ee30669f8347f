package gpu

import "time"

// Releaser is implemented by every GPU object. Release drops the owner's
// reference; it is called exactly once.
type Releaser interface {
	Release()
}

// Resource is a texture or buffer that views can be created over.
type Resource interface {
	Releaser
}

type Texture2D interface {
	Resource
	Desc() TextureDesc
}

type Buffer interface{ Resource }

type (
	RenderTargetView   interface{ Releaser }
	ShaderResourceView interface{ Releaser }
	DepthStencilView   interface{ Releaser }
	VertexShader       interface{ Releaser }
	PixelShader        interface{ Releaser }
	InputLayout        interface{ Releaser }
	DepthStencilState  interface{ Releaser }
	RasterizerState    interface{ Releaser }
	SamplerState       interface{ Releaser }
)

// Device creates GPU objects. All methods are called from the render thread.
type Device interface {
	Releaser
	CreateTexture2D(desc TextureDesc) (Texture2D, error)
	CreateBuffer(desc BufferDesc, initial []byte) (Buffer, error)
	CreateRenderTargetView(res Resource, desc *RTVDesc) (RenderTargetView, error)
	CreateShaderResourceView(res Resource, desc SRVDesc) (ShaderResourceView, error)
	CreateDepthStencilView(res Resource, desc DSVDesc) (DepthStencilView, error)
	CreateVertexShader(bytecode []byte) (VertexShader, error)
	CreatePixelShader(bytecode []byte) (PixelShader, error)
	CreateInputLayout(elems []InputElement, vsBytecode []byte) (InputLayout, error)
	CreateDepthStencilState(desc DepthStencilDesc) (DepthStencilState, error)
	CreateRasterizerState(desc RasterizerDesc) (RasterizerState, error)
	CreateSamplerState(desc SamplerDesc) (SamplerState, error)

	// DuplicateOutput walks adapter, output and duplication-capable output
	// for the given display index and opens a duplication session. formats
	// lists the desktop formats the caller can consume, in preference order.
	DuplicateOutput(output int, formats []Format) (Duplication, error)
}

// Context is the immediate device context. Nil arguments unbind.
type Context interface {
	Releaser
	RSSetViewport(vp Viewport)
	RSSetState(state RasterizerState)
	OMSetRenderTargets(rtv RenderTargetView, dsv DepthStencilView)
	OMSetDepthStencilState(state DepthStencilState, stencilRef uint32)
	ClearRenderTargetView(rtv RenderTargetView, c Color)
	ClearDepthStencilView(dsv DepthStencilView, flags ClearFlags, depth float32, stencil uint8)
	IASetInputLayout(layout InputLayout)
	IASetPrimitiveTopology(t Topology)
	IASetVertexBuffer(buf Buffer, stride, offset uint32)
	VSSetShader(vs VertexShader)
	PSSetShader(ps PixelShader)
	VSSetConstantBuffer(slot uint32, buf Buffer)
	PSSetConstantBuffer(slot uint32, buf Buffer)
	PSSetShaderResource(slot uint32, srv ShaderResourceView)
	PSSetSampler(slot uint32, s SamplerState)
	UpdateSubresource(res Resource, data []byte)
	Draw(vertexCount, startVertex uint32)
}

// SwapChain is the window's presentation chain.
type SwapChain interface {
	Releaser
	ResizeBuffers(count uint32, size Size, format Format) error
	GetBuffer(index uint32) (Texture2D, error)
	Present(syncInterval, flags uint32) error
}

// Duplication is an open desktop duplication session. At most one frame is
// held at a time: every successful AcquireNextFrame must be matched by exactly
// one ReleaseFrame before the next acquire.
type Duplication interface {
	Releaser
	Desc() DuplicationDesc
	// AcquireNextFrame returns ErrWaitTimeout (wrapped in *Error) when the
	// desktop did not change within timeout. The returned texture is owned by
	// the caller and must be released before ReleaseFrame.
	AcquireNextFrame(timeout time.Duration) (FrameInfo, Texture2D, error)
	ReleaseFrame() error
}

// GraphicsContext bundles the device, its immediate context and the window
// swapchain. It is created once by a backend and passed to every component.
type GraphicsContext struct {
	Device    Device
	Context   Context
	SwapChain SwapChain
}

// Release tears the context down in reverse creation order.
func (g *GraphicsContext) Release() {
	if g == nil {
		return
	}
	if g.SwapChain != nil {
		g.SwapChain.Release()
		g.SwapChain = nil
	}
	if g.Context != nil {
		g.Context.Release()
		g.Context = nil
	}
	if g.Device != nil {
		g.Device.Release()
		g.Device = nil
	}
}

// SafeRelease releases each non-nil object.
func SafeRelease(objs ...Releaser) {
	for _, o := range objs {
		if o != nil {
			o.Release()
		}
	}
}
