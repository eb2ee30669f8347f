//go:build windows

package d3d11

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

const (
	compileEnableStrictness = 1 << 11
	compileDebug            = 1 << 0
)

// Compiler compiles HLSL with D3DCompile from d3dcompiler_47.dll.
type Compiler struct {
	Debug bool
}

func (c Compiler) Compile(source []byte, name, entry, target string) ([]byte, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("compile %s: empty source", name)
	}
	if err := procD3DCompile.Find(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	pName, err := windows.BytePtrFromString(name)
	if err != nil {
		return nil, err
	}
	pEntry, err := windows.BytePtrFromString(entry)
	if err != nil {
		return nil, err
	}
	pTarget, err := windows.BytePtrFromString(target)
	if err != nil {
		return nil, err
	}
	flags := uintptr(compileEnableStrictness)
	if c.Debug {
		flags |= compileDebug
	}

	var code, errBlob uintptr
	hr, _, _ := procD3DCompile.Call(
		uintptr(unsafe.Pointer(&source[0])),
		uintptr(len(source)),
		uintptr(unsafe.Pointer(pName)),
		0, 0,
		uintptr(unsafe.Pointer(pEntry)),
		uintptr(unsafe.Pointer(pTarget)),
		flags, 0,
		uintptr(unsafe.Pointer(&code)),
		uintptr(unsafe.Pointer(&errBlob)),
	)
	runtime.KeepAlive(source)
	defer comRelease(errBlob)
	if int32(hr) < 0 {
		comRelease(code)
		if msg := blobBytes(errBlob); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w", strings.TrimRight(string(msg), "\x00\r\n"), gpu.NewError("D3DCompile", hr))
		}
		return nil, gpu.NewError("D3DCompile", hr)
	}
	defer comRelease(code)
	return blobBytes(code), nil
}

// blobBytes copies the contents of an ID3DBlob.
func blobBytes(blob uintptr) []byte {
	if blob == 0 {
		return nil
	}
	ptr := comValue(blob, 3)
	size := comValue(blob, 4)
	if ptr == 0 || size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	return out
}
