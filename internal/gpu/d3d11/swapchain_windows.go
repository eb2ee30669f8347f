//go:build windows

package d3d11

import (
	"unsafe"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

type swapChain struct{ object }

// ResizeBuffers fails with DXGI_ERROR_INVALID_CALL while any view over a
// backbuffer is still alive.
func (s *swapChain) ResizeBuffers(count uint32, size gpu.Size, format gpu.Format) error {
	return comCall("ResizeBuffers", s.ptr, 13,
		uintptr(count), uintptr(size.Width), uintptr(size.Height), uintptr(format), 0)
}

func (s *swapChain) GetBuffer(index uint32) (gpu.Texture2D, error) {
	var out uintptr
	if err := comCall("GetBuffer", s.ptr, 9, uintptr(index), uintptr(unsafe.Pointer(iidTexture2D)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return newTexture(out), nil
}

func (s *swapChain) Present(syncInterval, flags uint32) error {
	return comCall("Present", s.ptr, 8, uintptr(syncInterval), uintptr(flags))
}
