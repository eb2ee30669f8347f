//go:build windows

package d3d11

import (
	"errors"
	"time"
	"unsafe"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// DuplicateOutput opens a duplication session on output of the adapter the
// device was created on. IDXGIOutput5::DuplicateOutput1 is preferred so the
// caller's format list is honoured; older systems fall back to
// IDXGIOutput1::DuplicateOutput, which always delivers BGRA.
func (d *device) DuplicateOutput(output int, formats []gpu.Format) (gpu.Duplication, error) {
	dxgiDev, err := queryInterface("QueryInterface(IDXGIDevice)", d.ptr, iidDXGIDevice)
	if err != nil {
		return nil, err
	}
	defer comRelease(dxgiDev)

	var adapter uintptr
	if err := comCall("IDXGIDevice::GetAdapter", dxgiDev, 7, uintptr(unsafe.Pointer(&adapter))); err != nil {
		return nil, err
	}
	defer comRelease(adapter)

	var out uintptr
	if err := comCall("IDXGIAdapter::EnumOutputs", adapter, 7, uintptr(output), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	defer comRelease(out)

	dup, err := d.duplicate(out, formats)
	if err != nil {
		return nil, err
	}

	var nd outDuplDesc
	comVoid(dup, 7, uintptr(unsafe.Pointer(&nd)))
	desc := gpu.DuplicationDesc{
		Width:                   nd.ModeDesc.Width,
		Height:                  nd.ModeDesc.Height,
		Format:                  gpu.Format(nd.ModeDesc.Format),
		Rotation:                nd.Rotation,
		DesktopImageInSystemMem: nd.DesktopImageInSystemMemory != 0,
	}
	log.Info("output duplication opened",
		"output", output,
		"width", desc.Width,
		"height", desc.Height,
		"format", uint32(desc.Format),
		"rotation", desc.Rotation)
	return &duplication{object: object{dup}, desc: desc}, nil
}

func (d *device) duplicate(output uintptr, formats []gpu.Format) (uintptr, error) {
	var dup uintptr
	if len(formats) > 0 {
		if out5, err := queryInterface("QueryInterface(IDXGIOutput5)", output, iidDXGIOutput5); err == nil {
			native := make([]uint32, len(formats))
			for i, f := range formats {
				native[i] = uint32(f)
			}
			err = comCall("IDXGIOutput5::DuplicateOutput1", out5, 26,
				d.ptr, 0, uintptr(len(native)), uintptr(unsafe.Pointer(&native[0])), uintptr(unsafe.Pointer(&dup)))
			comRelease(out5)
			if err == nil {
				return dup, nil
			}
			// Unsupported outputs and a lost device fail the same way
			// through the older entry point.
			if errors.Is(err, gpu.ErrUnsupported) || errors.Is(err, gpu.ErrDeviceLost) {
				return 0, err
			}
			log.Debug("DuplicateOutput1 failed, falling back", "error", err)
		}
	}

	out1, err := queryInterface("QueryInterface(IDXGIOutput1)", output, iidDXGIOutput1)
	if err != nil {
		return 0, err
	}
	defer comRelease(out1)
	if err := comCall("IDXGIOutput1::DuplicateOutput", out1, 22, d.ptr, uintptr(unsafe.Pointer(&dup))); err != nil {
		return 0, err
	}
	return dup, nil
}

type duplication struct {
	object
	desc gpu.DuplicationDesc
}

func (d *duplication) Desc() gpu.DuplicationDesc { return d.desc }

func (d *duplication) AcquireNextFrame(timeout time.Duration) (gpu.FrameInfo, gpu.Texture2D, error) {
	var info outDuplFrameInfo
	var resource uintptr
	ms := uintptr(timeout / time.Millisecond)
	if err := comCall("AcquireNextFrame", d.ptr, 8, ms, uintptr(unsafe.Pointer(&info)), uintptr(unsafe.Pointer(&resource))); err != nil {
		return gpu.FrameInfo{}, nil, err
	}
	tex, err := queryInterface("QueryInterface(ID3D11Texture2D)", resource, iidTexture2D)
	comRelease(resource)
	if err != nil {
		// The frame is held; give it back so the next acquire is legal.
		_ = comCall("ReleaseFrame", d.ptr, 14)
		return gpu.FrameInfo{}, nil, err
	}
	return info.toGPU(), newTexture(tex), nil
}

func (d *duplication) ReleaseFrame() error {
	return comCall("ReleaseFrame", d.ptr, 14)
}
