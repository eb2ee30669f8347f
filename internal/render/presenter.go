package render

import (
	"errors"
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
)

const (
	swapChainBufferCount = 2
	swapChainFormat      = gpu.FormatR8G8B8A8Unorm
)

// BackbufferClearColor is the window background behind the composited desktop.
var BackbufferClearColor = gpu.Color{1, 1, 1, 1}

// Presenter owns the backbuffer render target and the window-sized depth
// buffer. Resize only records the request; the buffers are rebuilt at the
// next PrepareDraw, so any number of resizes between frames costs one
// rebuild.
type Presenter struct {
	gc *gpu.GraphicsContext
	// SyncInterval is passed to Present; 0 presents immediately.
	SyncInterval uint32

	size     gpu.Size
	viewport gpu.Viewport
	dirty    bool

	backbuffer gpu.Texture2D
	rtv        gpu.RenderTargetView
	depth      gpu.Texture2D
	dsv        gpu.DepthStencilView

	states   *DepthStates
	useDepth bool

	rebuilds int
	presents uint64
}

func NewPresenter(gc *gpu.GraphicsContext) *Presenter {
	return &Presenter{gc: gc, useDepth: true}
}

// Initialize creates the depth states and the buffers for a swapchain that
// was created at size.
func (p *Presenter) Initialize(size gpu.Size) error {
	if !size.Valid() {
		return fmt.Errorf("initialize presenter at %dx%d: %w", size.Width, size.Height, ErrInvalidSize)
	}
	states, err := NewDepthStates(p.gc.Device)
	if err != nil {
		return err
	}
	p.states = states
	p.size = size
	p.viewport = gpu.ViewportFor(size)
	if err := p.resetBuffers(); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

// Resize schedules a buffer rebuild at size. Non-positive sizes (a
// minimized window) are ignored.
func (p *Presenter) Resize(size gpu.Size) {
	if !size.Valid() {
		log.Debug("ignoring empty presenter resize", logging.Size(size.Width, size.Height)...)
		return
	}
	p.size = size
	p.viewport = gpu.ViewportFor(size)
	p.dirty = true
}

// UseDepth selects the depth-tested or depth-disabled state. It takes
// effect at the next PrepareDraw or Bind.
func (p *Presenter) UseDepth(on bool) {
	p.useDepth = on
}

// resetBuffers drops the backbuffer and depth views, resizes the swapchain
// unless this is the first build, and rebuilds everything at p.size.
func (p *Presenter) resetBuffers() error {
	p.releaseBuffers()

	if p.rebuilds > 0 {
		if err := p.gc.SwapChain.ResizeBuffers(swapChainBufferCount, p.size, swapChainFormat); err != nil {
			return fmt.Errorf("resize swapchain buffers: %w", err)
		}
	}
	bb, err := p.gc.SwapChain.GetBuffer(0)
	if err != nil {
		return fmt.Errorf("get swapchain buffer: %w", err)
	}
	rtv, err := p.gc.Device.CreateRenderTargetView(bb, nil)
	if err != nil {
		bb.Release()
		return fmt.Errorf("create backbuffer render target view: %w", err)
	}

	depth, err := p.gc.Device.CreateTexture2D(gpu.TextureDesc{
		Width:       uint32(p.size.Width),
		Height:      uint32(p.size.Height),
		MipLevels:   1,
		ArraySize:   1,
		Format:      gpu.FormatR32Typeless,
		SampleCount: 1,
		Usage:       gpu.UsageDefault,
		BindFlags:   gpu.BindDepthStencil,
	})
	if err != nil {
		rtv.Release()
		bb.Release()
		return fmt.Errorf("create depth texture: %w", err)
	}
	dsv, err := p.gc.Device.CreateDepthStencilView(depth, gpu.DSVDesc{Format: gpu.FormatD32Float})
	if err != nil {
		depth.Release()
		rtv.Release()
		bb.Release()
		return fmt.Errorf("create depth stencil view: %w", err)
	}

	p.backbuffer, p.rtv, p.depth, p.dsv = bb, rtv, depth, dsv
	p.rebuilds++
	log.Info("swapchain buffers recreated", logging.Size(p.size.Width, p.size.Height)...)
	return nil
}

func (p *Presenter) releaseBuffers() {
	gpu.SafeRelease(p.dsv, p.depth, p.rtv, p.backbuffer)
	p.dsv, p.depth, p.rtv, p.backbuffer = nil, nil, nil, nil
}

// PrepareDraw applies a pending resize, binds the backbuffer with depth and
// clears both.
func (p *Presenter) PrepareDraw() error {
	if p.dirty {
		if err := p.resetBuffers(); err != nil {
			return err
		}
		p.dirty = false
	}
	if p.rtv == nil {
		return errors.New("render: presenter has no backbuffer")
	}
	p.Bind()
	ctx := p.gc.Context
	ctx.ClearRenderTargetView(p.rtv, BackbufferClearColor)
	ctx.ClearDepthStencilView(p.dsv, gpu.ClearDepth|gpu.ClearStencil, 1, 0)
	return nil
}

// Bind rebinds viewport, depth state and backbuffer targets without
// clearing, e.g. after an offscreen pass.
func (p *Presenter) Bind() {
	ctx := p.gc.Context
	ctx.RSSetViewport(p.viewport)
	if p.states != nil {
		ctx.OMSetDepthStencilState(p.states.Select(p.useDepth), 1)
	}
	ctx.OMSetRenderTargets(p.rtv, p.dsv)
}

// Present shows the frame. Any failure, including device loss, is fatal.
func (p *Presenter) Present() error {
	if err := p.gc.SwapChain.Present(p.SyncInterval, 0); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	p.presents++
	return nil
}

func (p *Presenter) Viewport() gpu.Viewport { return p.viewport }

// BackbufferSize is the size of the live backbuffer texture.
func (p *Presenter) BackbufferSize() gpu.Size {
	if p.backbuffer == nil {
		return gpu.Size{}
	}
	return p.backbuffer.Desc().Size()
}

// DepthSize is the size of the live depth texture.
func (p *Presenter) DepthSize() gpu.Size {
	if p.depth == nil {
		return gpu.Size{}
	}
	return p.depth.Desc().Size()
}

// Rebuilds counts buffer recreations, including the initial one.
func (p *Presenter) Rebuilds() int { return p.rebuilds }

// Presents counts successful presents.
func (p *Presenter) Presents() uint64 { return p.presents }

func (p *Presenter) Release() {
	p.releaseBuffers()
	p.states.Release()
	p.states = nil
}
