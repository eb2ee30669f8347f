// Package gpu defines the backend-neutral contract between deskmirror's
// render pipeline and a concrete graphics API. The Windows backend lives in
// gpu/d3d11; tests use gpu/fakegpu.
package gpu

// Format mirrors DXGI_FORMAT values so backends can pass them through.
type Format uint32

const (
	FormatUnknown           Format = 0
	FormatR32G32B32A32Float Format = 2
	FormatR32G32B32Float    Format = 6
	FormatR16G16B16A16Float Format = 10
	FormatR32G32Float       Format = 16
	FormatR10G10B10A2Unorm  Format = 24
	FormatR8G8B8A8Unorm     Format = 28
	FormatR32Typeless       Format = 39
	FormatD32Float          Format = 40
	FormatR16Uint           Format = 57
	FormatB8G8R8A8Unorm     Format = 87
)

// Usage mirrors D3D11_USAGE.
type Usage uint32

const (
	UsageDefault   Usage = 0
	UsageImmutable Usage = 1
	UsageDynamic   Usage = 2
	UsageStaging   Usage = 3
)

// BindFlags mirrors D3D11_BIND_FLAG.
type BindFlags uint32

const (
	BindVertexBuffer   BindFlags = 0x1
	BindIndexBuffer    BindFlags = 0x2
	BindConstantBuffer BindFlags = 0x4
	BindShaderResource BindFlags = 0x8
	BindRenderTarget   BindFlags = 0x20
	BindDepthStencil   BindFlags = 0x40
)

// Topology mirrors D3D11_PRIMITIVE_TOPOLOGY.
type Topology uint32

const (
	TopologyLineList     Topology = 2
	TopologyTriangleList Topology = 4
)

// ClearFlags mirrors D3D11_CLEAR_FLAG.
type ClearFlags uint32

const (
	ClearDepth   ClearFlags = 0x1
	ClearStencil ClearFlags = 0x2
)

// Color is an RGBA clear color.
type Color [4]float32

// Size is a pixel extent.
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Viewport mirrors D3D11_VIEWPORT.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ViewportFor returns the full-surface viewport for size with a [0,1] depth range.
func ViewportFor(s Size) Viewport {
	return Viewport{Width: float32(s.Width), Height: float32(s.Height), MinDepth: 0, MaxDepth: 1}
}

type TextureDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         Format
	SampleCount    uint32
	SampleQuality  uint32
	Usage          Usage
	BindFlags      BindFlags
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// Size returns the texture extent.
func (d TextureDesc) Size() Size { return Size{Width: int(d.Width), Height: int(d.Height)} }

type BufferDesc struct {
	ByteWidth      uint32
	Usage          Usage
	BindFlags      BindFlags
	CPUAccessFlags uint32
}

// SRVDesc describes a 2D shader-resource view.
type SRVDesc struct {
	Format          Format
	MostDetailedMip uint32
	MipLevels       uint32
}

// RTVDesc describes a 2D render-target view.
type RTVDesc struct {
	Format   Format
	MipSlice uint32
}

// DSVDesc describes a 2D depth-stencil view.
type DSVDesc struct {
	Format   Format
	MipSlice uint32
}

// InputElement is one per-vertex attribute in input slot 0.
type InputElement struct {
	Semantic      string
	SemanticIndex uint32
	Format        Format
	Offset        uint32
}

type ComparisonFunc uint32

const (
	ComparisonNever  ComparisonFunc = 1
	ComparisonLess   ComparisonFunc = 2
	ComparisonAlways ComparisonFunc = 8
)

type StencilOp uint32

const (
	StencilOpKeep StencilOp = 1
	StencilOpIncr StencilOp = 7
	StencilOpDecr StencilOp = 8
)

type StencilOpDesc struct {
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	Func        ComparisonFunc
}

type DepthStencilDesc struct {
	DepthEnable      bool
	DepthWriteAll    bool
	DepthFunc        ComparisonFunc
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        StencilOpDesc
	BackFace         StencilOpDesc
}

type FillMode uint32

const (
	FillWireframe FillMode = 2
	FillSolid     FillMode = 3
)

type CullMode uint32

const (
	CullNone  CullMode = 1
	CullFront CullMode = 2
	CullBack  CullMode = 3
)

type RasterizerDesc struct {
	FillMode              FillMode
	CullMode              CullMode
	FrontCounterClockwise bool
	DepthClipEnable       bool
	MultisampleEnable     bool
	AntialiasedLineEnable bool
}

type Filter uint32

const FilterMinMagMipLinear Filter = 0x15

type AddressMode uint32

const (
	AddressWrap  AddressMode = 1
	AddressClamp AddressMode = 3
)

type SamplerDesc struct {
	Filter   Filter
	AddressU AddressMode
	AddressV AddressMode
	AddressW AddressMode
	MaxLOD   float32
}

// DuplicationDesc mirrors DXGI_OUTDUPL_DESC.
type DuplicationDesc struct {
	Width                   uint32
	Height                  uint32
	Format                  Format
	Rotation                uint32
	DesktopImageInSystemMem bool
}

// FrameInfo mirrors DXGI_OUTDUPL_FRAME_INFO.
type FrameInfo struct {
	LastPresentTime         int64
	LastMouseUpdateTime     int64
	AccumulatedFrames       uint32
	RectsCoalesced          bool
	ProtectedContentMasked  bool
	PointerX, PointerY      int32
	PointerVisible          bool
	TotalMetadataBufferSize uint32
	PointerShapeBufferSize  uint32
}
