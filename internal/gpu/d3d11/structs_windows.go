//go:build windows

package d3d11

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// Native layouts of the D3D11 and DXGI descriptor structs.

type rational struct {
	Numerator   uint32
	Denominator uint32
}

type modeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      rational
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

type sampleDesc struct {
	Count   uint32
	Quality uint32
}

type swapChainDesc struct {
	BufferDesc   modeDesc
	SampleDesc   sampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow windows.HWND
	Windowed     uint32
	SwapEffect   uint32
	Flags        uint32
}

type textureDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     sampleDesc
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

func textureDescFrom(d gpu.TextureDesc) textureDesc {
	return textureDesc{
		Width:          d.Width,
		Height:         d.Height,
		MipLevels:      d.MipLevels,
		ArraySize:      d.ArraySize,
		Format:         uint32(d.Format),
		SampleDesc:     sampleDesc{Count: d.SampleCount, Quality: d.SampleQuality},
		Usage:          uint32(d.Usage),
		BindFlags:      uint32(d.BindFlags),
		CPUAccessFlags: d.CPUAccessFlags,
		MiscFlags:      d.MiscFlags,
	}
}

func (d textureDesc) toGPU() gpu.TextureDesc {
	return gpu.TextureDesc{
		Width:          d.Width,
		Height:         d.Height,
		MipLevels:      d.MipLevels,
		ArraySize:      d.ArraySize,
		Format:         gpu.Format(d.Format),
		SampleCount:    d.SampleDesc.Count,
		SampleQuality:  d.SampleDesc.Quality,
		Usage:          gpu.Usage(d.Usage),
		BindFlags:      gpu.BindFlags(d.BindFlags),
		CPUAccessFlags: d.CPUAccessFlags,
		MiscFlags:      d.MiscFlags,
	}
}

type bufferDesc struct {
	ByteWidth           uint32
	Usage               uint32
	BindFlags           uint32
	CPUAccessFlags      uint32
	MiscFlags           uint32
	StructureByteStride uint32
}

type subresourceData struct {
	SysMem           unsafe.Pointer
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

// The view descriptors are unions in C; the padding covers the largest
// member so the runtime never reads past the Go value.
const viewDimensionTexture2D = 4

type srvDesc struct {
	Format          uint32
	ViewDimension   uint32
	MostDetailedMip uint32
	MipLevels       uint32
	_               [2]uint32
}

type rtvDesc struct {
	Format        uint32
	ViewDimension uint32
	MipSlice      uint32
	_             [2]uint32
}

const dsvDimensionTexture2D = 3

type dsvDesc struct {
	Format        uint32
	ViewDimension uint32
	Flags         uint32
	MipSlice      uint32
	_             [2]uint32
}

type inputElementDesc struct {
	SemanticName         *byte
	SemanticIndex        uint32
	Format               uint32
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       uint32
	InstanceDataStepRate uint32
}

type stencilOpDesc struct {
	StencilFailOp      uint32
	StencilDepthFailOp uint32
	StencilPassOp      uint32
	StencilFunc        uint32
}

type depthStencilDesc struct {
	DepthEnable      uint32
	DepthWriteMask   uint32
	DepthFunc        uint32
	StencilEnable    uint32
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        stencilOpDesc
	BackFace         stencilOpDesc
}

func stencilOpFrom(s gpu.StencilOpDesc) stencilOpDesc {
	return stencilOpDesc{
		StencilFailOp:      uint32(s.FailOp),
		StencilDepthFailOp: uint32(s.DepthFailOp),
		StencilPassOp:      uint32(s.PassOp),
		StencilFunc:        uint32(s.Func),
	}
}

type rasterizerDesc struct {
	FillMode              uint32
	CullMode              uint32
	FrontCounterClockwise uint32
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       uint32
	ScissorEnable         uint32
	MultisampleEnable     uint32
	AntialiasedLineEnable uint32
}

type samplerDesc struct {
	Filter         uint32
	AddressU       uint32
	AddressV       uint32
	AddressW       uint32
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc uint32
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}

type outDuplDesc struct {
	ModeDesc                   modeDesc
	Rotation                   uint32
	DesktopImageInSystemMemory int32
}

type outDuplPosition struct {
	X, Y    int32
	Visible int32
}

type outDuplFrameInfo struct {
	LastPresentTime           int64
	LastMouseUpdateTime       int64
	AccumulatedFrames         uint32
	RectsCoalesced            int32
	ProtectedContentMaskedOut int32
	PointerPosition           outDuplPosition
	TotalMetadataBufferSize   uint32
	PointerShapeBufferSize    uint32
}

func (f outDuplFrameInfo) toGPU() gpu.FrameInfo {
	return gpu.FrameInfo{
		LastPresentTime:         f.LastPresentTime,
		LastMouseUpdateTime:     f.LastMouseUpdateTime,
		AccumulatedFrames:       f.AccumulatedFrames,
		RectsCoalesced:          f.RectsCoalesced != 0,
		ProtectedContentMasked:  f.ProtectedContentMaskedOut != 0,
		PointerX:                f.PointerPosition.X,
		PointerY:                f.PointerPosition.Y,
		PointerVisible:          f.PointerPosition.Visible != 0,
		TotalMetadataBufferSize: f.TotalMetadataBufferSize,
		PointerShapeBufferSize:  f.PointerShapeBufferSize,
	}
}
