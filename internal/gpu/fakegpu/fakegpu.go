// Package fakegpu is an in-memory gpu backend that records every call and
// tracks object lifetimes. Tests use it to check binding order, leak
// freedom and acquire/release parity, and to inject failures into any
// creation call.
package fakegpu

import (
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// Object is the common part of every fake GPU object.
type Object struct {
	ID       int
	Kind     string
	dev      *Device
	released bool
}

func (o *Object) Release() {
	if o.released {
		o.dev.DoubleReleases++
		return
	}
	o.released = true
	delete(o.dev.live, o.ID)
}

// Released reports whether Release has been called.
func (o *Object) Released() bool { return o.released }

type Texture struct {
	Object
	desc gpu.TextureDesc
}

func (t *Texture) Desc() gpu.TextureDesc { return t.desc }

type Buffer struct {
	Object
	Desc gpu.BufferDesc
	Data []byte
}

// View is an RTV, SRV or DSV over Resource.
type View struct {
	Object
	Resource gpu.Resource
	Format   gpu.Format
	SRV      gpu.SRVDesc
}

type Shader struct {
	Object
	Bytecode []byte
}

type State struct {
	Object
	Desc any
}

// Backend bundles a fake device, context and swapchain.
type Backend struct {
	Device    *Device
	Context   *Context
	SwapChain *SwapChain
}

// New returns a backend whose swapchain buffers start at size.
func New(size gpu.Size) *Backend {
	dev := NewDevice()
	return &Backend{
		Device:    dev,
		Context:   &Context{},
		SwapChain: &SwapChain{dev: dev, size: size, format: gpu.FormatR8G8B8A8Unorm},
	}
}

// GraphicsContext wraps the backend for the code under test.
func (b *Backend) GraphicsContext() *gpu.GraphicsContext {
	return &gpu.GraphicsContext{Device: b.Device, Context: b.Context, SwapChain: b.SwapChain}
}

// Device records object creation. A failure armed with FailAt is returned
// as an E_OUTOFMEMORY *gpu.Error.
type Device struct {
	nextID  int
	live    map[int]*Object
	calls   map[string]int
	failAt  map[string]int
	created map[string]int

	// Duplications holds every session opened, in order.
	Duplications []*Duplication
	// NextScript seeds the next duplication session opened.
	NextScript []Step
	// DesktopSize is the duplication desc size (default 1920x1080).
	DesktopSize    gpu.Size
	DoubleReleases int
	Released       bool
}

func NewDevice() *Device {
	return &Device{
		live:        make(map[int]*Object),
		calls:       make(map[string]int),
		failAt:      make(map[string]int),
		created:     make(map[string]int),
		DesktopSize: gpu.Size{Width: 1920, Height: 1080},
	}
}

// FailAt makes the n-th (1-based, counted from now) call to op fail.
func (d *Device) FailAt(op string, n int) {
	d.failAt[op] = d.calls[op] + n
}

// FailNext makes the next call to op fail.
func (d *Device) FailNext(op string) { d.FailAt(op, 1) }

// Calls returns how many times op was invoked.
func (d *Device) Calls(op string) int { return d.calls[op] }

// Created returns how many objects of kind were successfully created.
func (d *Device) Created(kind string) int { return d.created[kind] }

// Live returns the number of unreleased objects.
func (d *Device) Live() int { return len(d.live) }

// LiveOf returns the number of unreleased objects of kind.
func (d *Device) LiveOf(kind string) int {
	n := 0
	for _, o := range d.live {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// LiveKinds lists the kinds of all unreleased objects, for failure messages.
func (d *Device) LiveKinds() []string {
	var kinds []string
	for _, o := range d.live {
		kinds = append(kinds, fmt.Sprintf("%s#%d", o.Kind, o.ID))
	}
	return kinds
}

func (d *Device) Release() { d.Released = true }

func (d *Device) enter(op string) error {
	d.calls[op]++
	if at, ok := d.failAt[op]; ok && at == d.calls[op] {
		delete(d.failAt, op)
		return &gpu.Error{Op: op, Code: gpu.CodeOutOfMemory}
	}
	return nil
}

func (d *Device) track(kind string) Object {
	d.nextID++
	o := Object{ID: d.nextID, Kind: kind, dev: d}
	d.created[kind]++
	return o
}

func (d *Device) register(o *Object) { d.live[o.ID] = o }

func (d *Device) newTexture(kind string, desc gpu.TextureDesc) *Texture {
	t := &Texture{Object: d.track(kind), desc: desc}
	d.register(&t.Object)
	return t
}

func (d *Device) CreateTexture2D(desc gpu.TextureDesc) (gpu.Texture2D, error) {
	if err := d.enter("CreateTexture2D"); err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, &gpu.Error{Op: "CreateTexture2D", Code: gpu.CodeInvalidArg}
	}
	return d.newTexture("Texture2D", desc), nil
}

func (d *Device) CreateBuffer(desc gpu.BufferDesc, initial []byte) (gpu.Buffer, error) {
	if err := d.enter("CreateBuffer"); err != nil {
		return nil, err
	}
	b := &Buffer{Object: d.track("Buffer"), Desc: desc, Data: append([]byte(nil), initial...)}
	d.register(&b.Object)
	return b, nil
}

func (d *Device) newView(op, kind string, res gpu.Resource, format gpu.Format) (*View, error) {
	if err := d.enter(op); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &gpu.Error{Op: op, Code: gpu.CodeInvalidArg}
	}
	if o, ok := objectOf(res); ok && o.released {
		return nil, &gpu.Error{Op: op, Code: gpu.CodeInvalidArg}
	}
	v := &View{Object: d.track(kind), Resource: res, Format: format}
	d.register(&v.Object)
	return v, nil
}

func (d *Device) CreateRenderTargetView(res gpu.Resource, desc *gpu.RTVDesc) (gpu.RenderTargetView, error) {
	var f gpu.Format
	if desc != nil {
		f = desc.Format
	}
	v, err := d.newView("CreateRenderTargetView", "RenderTargetView", res, f)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Device) CreateShaderResourceView(res gpu.Resource, desc gpu.SRVDesc) (gpu.ShaderResourceView, error) {
	v, err := d.newView("CreateShaderResourceView", "ShaderResourceView", res, desc.Format)
	if err != nil {
		return nil, err
	}
	v.SRV = desc
	return v, nil
}

func (d *Device) CreateDepthStencilView(res gpu.Resource, desc gpu.DSVDesc) (gpu.DepthStencilView, error) {
	v, err := d.newView("CreateDepthStencilView", "DepthStencilView", res, desc.Format)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Device) newShader(op, kind string, bytecode []byte) (*Shader, error) {
	if err := d.enter(op); err != nil {
		return nil, err
	}
	if len(bytecode) == 0 {
		return nil, &gpu.Error{Op: op, Code: gpu.CodeInvalidArg}
	}
	s := &Shader{Object: d.track(kind), Bytecode: bytecode}
	d.register(&s.Object)
	return s, nil
}

func (d *Device) CreateVertexShader(bytecode []byte) (gpu.VertexShader, error) {
	s, err := d.newShader("CreateVertexShader", "VertexShader", bytecode)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) CreatePixelShader(bytecode []byte) (gpu.PixelShader, error) {
	s, err := d.newShader("CreatePixelShader", "PixelShader", bytecode)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) newState(op, kind string, desc any) (*State, error) {
	if err := d.enter(op); err != nil {
		return nil, err
	}
	s := &State{Object: d.track(kind), Desc: desc}
	d.register(&s.Object)
	return s, nil
}

func (d *Device) CreateInputLayout(elems []gpu.InputElement, vsBytecode []byte) (gpu.InputLayout, error) {
	if len(vsBytecode) == 0 {
		d.calls["CreateInputLayout"]++
		return nil, &gpu.Error{Op: "CreateInputLayout", Code: gpu.CodeInvalidArg}
	}
	s, err := d.newState("CreateInputLayout", "InputLayout", append([]gpu.InputElement(nil), elems...))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) CreateDepthStencilState(desc gpu.DepthStencilDesc) (gpu.DepthStencilState, error) {
	s, err := d.newState("CreateDepthStencilState", "DepthStencilState", desc)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) CreateRasterizerState(desc gpu.RasterizerDesc) (gpu.RasterizerState, error) {
	s, err := d.newState("CreateRasterizerState", "RasterizerState", desc)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) CreateSamplerState(desc gpu.SamplerDesc) (gpu.SamplerState, error) {
	s, err := d.newState("CreateSamplerState", "SamplerState", desc)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) DuplicateOutput(output int, formats []gpu.Format) (gpu.Duplication, error) {
	if err := d.enter("DuplicateOutput"); err != nil {
		return nil, err
	}
	if output != 0 {
		return nil, &gpu.Error{Op: "EnumOutputs", Code: 0x887A0002} // DXGI_ERROR_NOT_FOUND
	}
	format := gpu.FormatB8G8R8A8Unorm
	if len(formats) > 0 {
		format = formats[0]
	}
	dup := &Duplication{
		Object: d.track("Duplication"),
		desc: gpu.DuplicationDesc{
			Width:  uint32(d.DesktopSize.Width),
			Height: uint32(d.DesktopSize.Height),
			Format: format,
		},
		Script: d.NextScript,
	}
	d.NextScript = nil
	d.register(&dup.Object)
	d.Duplications = append(d.Duplications, dup)
	return dup, nil
}

func objectOf(v any) (*Object, bool) {
	switch o := v.(type) {
	case *Texture:
		return &o.Object, true
	case *Buffer:
		return &o.Object, true
	case *View:
		return &o.Object, true
	case *Shader:
		return &o.Object, true
	case *State:
		return &o.Object, true
	case *Duplication:
		return &o.Object, true
	}
	return nil, false
}
