package capture

import (
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// Frame is one acquired desktop image. It is valid until Release, which
// must run exactly once; further calls are no-ops.
type Frame struct {
	dup     gpu.Duplication
	texture gpu.Texture2D
	info    gpu.FrameInfo
	srv     gpu.ShaderResourceView
	done    bool
}

func (f *Frame) Info() gpu.FrameInfo { return f.info }

func (f *Frame) Texture() gpu.Texture2D { return f.texture }

// ShaderResourceView creates (once) a view over the desktop texture using
// the texture's own format and mip chain.
func (f *Frame) ShaderResourceView(dev gpu.Device) (gpu.ShaderResourceView, error) {
	if f.srv != nil {
		return f.srv, nil
	}
	srv, err := dev.CreateShaderResourceView(f.texture, srvDescFor(f.texture.Desc()))
	if err != nil {
		return nil, fmt.Errorf("create desktop shader resource view: %w", err)
	}
	f.srv = srv
	return srv, nil
}

func srvDescFor(d gpu.TextureDesc) gpu.SRVDesc {
	mips := d.MipLevels
	if mips == 0 {
		mips = 1
	}
	return gpu.SRVDesc{Format: d.Format, MipLevels: mips}
}

// Release drops the view and texture and hands the frame back to the
// compositor.
func (f *Frame) Release() error {
	if f.done {
		return nil
	}
	f.done = true
	gpu.SafeRelease(f.srv, f.texture)
	f.srv, f.texture = nil, nil
	if err := f.dup.ReleaseFrame(); err != nil {
		return fmt.Errorf("release desktop frame: %w", err)
	}
	return nil
}
