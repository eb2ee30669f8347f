// Package render owns the two colour targets of a frame: the offscreen
// FrameTarget the desktop capture draws into, and the window backbuffer
// managed by Presenter.
package render

import (
	"errors"
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
)

var log = logging.L("render")

// DefaultTargetSize is the capture surface size before the first resize.
var DefaultTargetSize = gpu.Size{Width: 640, Height: 360}

// TargetClearColor makes an empty capture surface easy to spot.
var TargetClearColor = gpu.Color{1, 0.5, 0, 1}

// ErrInvalidSize is returned for non-positive surface dimensions.
var ErrInvalidSize = errors.New("render: width and height must be positive")

// FrameTarget is an offscreen texture that can be rendered into and then
// sampled. The texture and both views exist together or not at all.
type FrameTarget struct {
	format   gpu.Format
	size     gpu.Size
	viewport gpu.Viewport

	texture gpu.Texture2D
	rtv     gpu.RenderTargetView
	srv     gpu.ShaderResourceView
}

// NewFrameTarget returns an empty target; format is fixed for its lifetime.
func NewFrameTarget(format gpu.Format) *FrameTarget {
	return &FrameTarget{format: format}
}

// Initialize creates the target at DefaultTargetSize.
func (t *FrameTarget) Initialize(dev gpu.Device) error {
	return t.Resize(dev, DefaultTargetSize)
}

// Resize replaces the texture and both views with ones of the given size.
// A target that already has that size is kept. On failure the target is
// left empty and the error names the failing call.
func (t *FrameTarget) Resize(dev gpu.Device, size gpu.Size) error {
	if !size.Valid() {
		return fmt.Errorf("resize frame target to %dx%d: %w", size.Width, size.Height, ErrInvalidSize)
	}
	if size == t.size && t.Ready() {
		return nil
	}
	t.Release()

	tex, err := dev.CreateTexture2D(gpu.TextureDesc{
		Width:       uint32(size.Width),
		Height:      uint32(size.Height),
		MipLevels:   1,
		ArraySize:   1,
		Format:      t.format,
		SampleCount: 1,
		Usage:       gpu.UsageDefault,
		BindFlags:   gpu.BindRenderTarget | gpu.BindShaderResource,
	})
	if err != nil {
		return fmt.Errorf("frame target: create texture: %w", err)
	}
	rtv, err := dev.CreateRenderTargetView(tex, &gpu.RTVDesc{Format: t.format})
	if err != nil {
		tex.Release()
		return fmt.Errorf("frame target: create render target view: %w", err)
	}
	srv, err := dev.CreateShaderResourceView(tex, gpu.SRVDesc{Format: t.format, MipLevels: 1})
	if err != nil {
		rtv.Release()
		tex.Release()
		return fmt.Errorf("frame target: create shader resource view: %w", err)
	}

	t.texture, t.rtv, t.srv = tex, rtv, srv
	t.size = size
	t.viewport = gpu.ViewportFor(size)
	log.Info("frame target created", logging.Size(size.Width, size.Height)...)
	return nil
}

// PrepareDraw binds the target without depth and clears it.
func (t *FrameTarget) PrepareDraw(ctx gpu.Context) error {
	if t.rtv == nil {
		return errors.New("render: frame target not initialized")
	}
	ctx.RSSetViewport(t.viewport)
	ctx.OMSetRenderTargets(t.rtv, nil)
	ctx.ClearRenderTargetView(t.rtv, TargetClearColor)
	return nil
}

// Clear fills the target with TargetClearColor without binding it.
func (t *FrameTarget) Clear(ctx gpu.Context) {
	if t.rtv != nil {
		ctx.ClearRenderTargetView(t.rtv, TargetClearColor)
	}
}

// Ready reports whether the target currently holds GPU objects.
func (t *FrameTarget) Ready() bool { return t.texture != nil }

func (t *FrameTarget) Texture() gpu.Texture2D { return t.texture }

func (t *FrameTarget) RenderTargetView() gpu.RenderTargetView { return t.rtv }

func (t *FrameTarget) ShaderResourceView() gpu.ShaderResourceView { return t.srv }

func (t *FrameTarget) Viewport() gpu.Viewport { return t.viewport }

func (t *FrameTarget) Size() gpu.Size { return t.size }

func (t *FrameTarget) Format() gpu.Format { return t.format }

// Release drops the texture and views. The target can be resized again.
func (t *FrameTarget) Release() {
	gpu.SafeRelease(t.srv, t.rtv, t.texture)
	t.srv, t.rtv, t.texture = nil, nil, nil
	t.size, t.viewport = gpu.Size{}, gpu.Viewport{}
}
