//go:build windows

package d3d11

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
)

var log = logging.L("d3d11")

const (
	driverTypeHardware   = 1
	createBGRASupport    = 0x20
	createDebug          = 0x2
	sdkVersion           = 7
	usageRenderTargetOut = 0x20
	swapEffectDiscard    = 0
)

// Options configures device and swapchain creation.
type Options struct {
	// Window is the HWND the swapchain presents into.
	Window uintptr
	Size   gpu.Size
	Format gpu.Format
	// Debug enables the D3D11 debug layer. It fails on machines without the
	// SDK layers installed.
	Debug bool
}

// New creates the hardware device, its immediate context and a two-buffer
// windowed swapchain for opts.Window.
func New(opts Options) (*gpu.GraphicsContext, error) {
	if opts.Window == 0 {
		return nil, fmt.Errorf("d3d11: no native window handle")
	}
	if opts.Format == gpu.FormatUnknown {
		opts.Format = gpu.FormatR8G8B8A8Unorm
	}
	if err := procCreateDeviceAndSwapChain.Find(); err != nil {
		return nil, fmt.Errorf("d3d11: %w", err)
	}

	desc := swapChainDesc{
		BufferDesc: modeDesc{
			Width:  uint32(opts.Size.Width),
			Height: uint32(opts.Size.Height),
			Format: uint32(opts.Format),
		},
		SampleDesc:   sampleDesc{Count: 1},
		BufferUsage:  usageRenderTargetOut,
		BufferCount:  2,
		OutputWindow: windows.HWND(opts.Window),
		Windowed:     1,
		SwapEffect:   swapEffectDiscard,
	}
	flags := uintptr(createBGRASupport)
	if opts.Debug {
		flags |= createDebug
	}

	var sc, dev, ctx uintptr
	hr, _, _ := procCreateDeviceAndSwapChain.Call(
		0,
		driverTypeHardware,
		0,
		flags,
		0, 0,
		sdkVersion,
		uintptr(unsafe.Pointer(&desc)),
		uintptr(unsafe.Pointer(&sc)),
		uintptr(unsafe.Pointer(&dev)),
		0,
		uintptr(unsafe.Pointer(&ctx)),
	)
	if int32(hr) < 0 {
		return nil, gpu.NewError("D3D11CreateDeviceAndSwapChain", hr)
	}
	log.Info("device and swapchain created",
		append(logging.Size(opts.Size.Width, opts.Size.Height), "debug", opts.Debug)...)

	return &gpu.GraphicsContext{
		Device:    &device{object{dev}},
		Context:   &deviceContext{object{ctx}},
		SwapChain: &swapChain{object{sc}},
	}, nil
}

type device struct{ object }

type (
	buffer       struct{ object }
	view         struct{ object }
	vertexShader struct{ object }
	pixelShader  struct{ object }
	inputLayout  struct{ object }
	stateObject  struct{ object }
)

func (d *device) CreateTexture2D(desc gpu.TextureDesc) (gpu.Texture2D, error) {
	nd := textureDescFrom(desc)
	var out uintptr
	if err := comCall("CreateTexture2D", d.ptr, 5, uintptr(unsafe.Pointer(&nd)), 0, uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &texture{object: object{out}, desc: desc}, nil
}

func (d *device) CreateBuffer(desc gpu.BufferDesc, initial []byte) (gpu.Buffer, error) {
	nd := bufferDesc{
		ByteWidth:      desc.ByteWidth,
		Usage:          uint32(desc.Usage),
		BindFlags:      uint32(desc.BindFlags),
		CPUAccessFlags: desc.CPUAccessFlags,
	}
	var init uintptr
	var sd subresourceData
	if len(initial) > 0 {
		sd.SysMem = unsafe.Pointer(&initial[0])
		init = uintptr(unsafe.Pointer(&sd))
	}
	var out uintptr
	err := comCall("CreateBuffer", d.ptr, 3, uintptr(unsafe.Pointer(&nd)), init, uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(initial)
	if err != nil {
		return nil, err
	}
	return &buffer{object{out}}, nil
}

func (d *device) CreateRenderTargetView(res gpu.Resource, desc *gpu.RTVDesc) (gpu.RenderTargetView, error) {
	var pdesc uintptr
	var nd rtvDesc
	if desc != nil {
		nd = rtvDesc{Format: uint32(desc.Format), ViewDimension: viewDimensionTexture2D, MipSlice: desc.MipSlice}
		pdesc = uintptr(unsafe.Pointer(&nd))
	}
	var out uintptr
	if err := comCall("CreateRenderTargetView", d.ptr, 9, raw(res), pdesc, uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &view{object{out}}, nil
}

func (d *device) CreateShaderResourceView(res gpu.Resource, desc gpu.SRVDesc) (gpu.ShaderResourceView, error) {
	nd := srvDesc{
		Format:          uint32(desc.Format),
		ViewDimension:   viewDimensionTexture2D,
		MostDetailedMip: desc.MostDetailedMip,
		MipLevels:       desc.MipLevels,
	}
	var out uintptr
	if err := comCall("CreateShaderResourceView", d.ptr, 7, raw(res), uintptr(unsafe.Pointer(&nd)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &view{object{out}}, nil
}

func (d *device) CreateDepthStencilView(res gpu.Resource, desc gpu.DSVDesc) (gpu.DepthStencilView, error) {
	nd := dsvDesc{Format: uint32(desc.Format), ViewDimension: dsvDimensionTexture2D, MipSlice: desc.MipSlice}
	var out uintptr
	if err := comCall("CreateDepthStencilView", d.ptr, 10, raw(res), uintptr(unsafe.Pointer(&nd)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &view{object{out}}, nil
}

func (d *device) CreateVertexShader(bytecode []byte) (gpu.VertexShader, error) {
	if len(bytecode) == 0 {
		return nil, gpu.NewError("CreateVertexShader", uintptr(gpu.CodeInvalidArg))
	}
	var out uintptr
	err := comCall("CreateVertexShader", d.ptr, 12,
		uintptr(unsafe.Pointer(&bytecode[0])), uintptr(len(bytecode)), 0, uintptr(unsafe.Pointer(&out)))
	if err != nil {
		return nil, err
	}
	return &vertexShader{object{out}}, nil
}

func (d *device) CreatePixelShader(bytecode []byte) (gpu.PixelShader, error) {
	if len(bytecode) == 0 {
		return nil, gpu.NewError("CreatePixelShader", uintptr(gpu.CodeInvalidArg))
	}
	var out uintptr
	err := comCall("CreatePixelShader", d.ptr, 15,
		uintptr(unsafe.Pointer(&bytecode[0])), uintptr(len(bytecode)), 0, uintptr(unsafe.Pointer(&out)))
	if err != nil {
		return nil, err
	}
	return &pixelShader{object{out}}, nil
}

func (d *device) CreateInputLayout(elems []gpu.InputElement, vsBytecode []byte) (gpu.InputLayout, error) {
	if len(elems) == 0 || len(vsBytecode) == 0 {
		return nil, gpu.NewError("CreateInputLayout", uintptr(gpu.CodeInvalidArg))
	}
	names := make([]*byte, len(elems))
	descs := make([]inputElementDesc, len(elems))
	for i, e := range elems {
		name, err := windows.BytePtrFromString(e.Semantic)
		if err != nil {
			return nil, fmt.Errorf("input element %q: %w", e.Semantic, err)
		}
		names[i] = name
		descs[i] = inputElementDesc{
			SemanticName:      name,
			SemanticIndex:     e.SemanticIndex,
			Format:            uint32(e.Format),
			AlignedByteOffset: e.Offset,
		}
	}
	var out uintptr
	err := comCall("CreateInputLayout", d.ptr, 11,
		uintptr(unsafe.Pointer(&descs[0])), uintptr(len(descs)),
		uintptr(unsafe.Pointer(&vsBytecode[0])), uintptr(len(vsBytecode)),
		uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(names)
	if err != nil {
		return nil, err
	}
	return &inputLayout{object{out}}, nil
}

func (d *device) CreateDepthStencilState(desc gpu.DepthStencilDesc) (gpu.DepthStencilState, error) {
	nd := depthStencilDesc{
		DepthEnable:      boolToU32(desc.DepthEnable),
		DepthWriteMask:   boolToU32(desc.DepthWriteAll),
		DepthFunc:        uint32(desc.DepthFunc),
		StencilEnable:    boolToU32(desc.StencilEnable),
		StencilReadMask:  desc.StencilReadMask,
		StencilWriteMask: desc.StencilWriteMask,
		FrontFace:        stencilOpFrom(desc.FrontFace),
		BackFace:         stencilOpFrom(desc.BackFace),
	}
	var out uintptr
	if err := comCall("CreateDepthStencilState", d.ptr, 21, uintptr(unsafe.Pointer(&nd)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &stateObject{object{out}}, nil
}

func (d *device) CreateRasterizerState(desc gpu.RasterizerDesc) (gpu.RasterizerState, error) {
	nd := rasterizerDesc{
		FillMode:              uint32(desc.FillMode),
		CullMode:              uint32(desc.CullMode),
		FrontCounterClockwise: boolToU32(desc.FrontCounterClockwise),
		DepthClipEnable:       boolToU32(desc.DepthClipEnable),
		MultisampleEnable:     boolToU32(desc.MultisampleEnable),
		AntialiasedLineEnable: boolToU32(desc.AntialiasedLineEnable),
	}
	var out uintptr
	if err := comCall("CreateRasterizerState", d.ptr, 22, uintptr(unsafe.Pointer(&nd)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &stateObject{object{out}}, nil
}

func (d *device) CreateSamplerState(desc gpu.SamplerDesc) (gpu.SamplerState, error) {
	nd := samplerDesc{
		Filter:         uint32(desc.Filter),
		AddressU:       uint32(desc.AddressU),
		AddressV:       uint32(desc.AddressV),
		AddressW:       uint32(desc.AddressW),
		MaxAnisotropy:  1,
		ComparisonFunc: uint32(gpu.ComparisonNever),
		MaxLOD:         desc.MaxLOD,
	}
	var out uintptr
	if err := comCall("CreateSamplerState", d.ptr, 23, uintptr(unsafe.Pointer(&nd)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return &stateObject{object{out}}, nil
}
