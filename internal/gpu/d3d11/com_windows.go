//go:build windows

package d3d11

import (
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

var (
	d3d11DLL    = windows.NewLazySystemDLL("d3d11.dll")
	compilerDLL = windows.NewLazySystemDLL("d3dcompiler_47.dll")

	procCreateDeviceAndSwapChain = d3d11DLL.NewProc("D3D11CreateDeviceAndSwapChain")
	procD3DCompile               = compilerDLL.NewProc("D3DCompile")
)

var (
	iidDXGIDevice  = ole.NewGUID("{54EC77FA-1377-44E6-8C32-88FD5F44C84C}")
	iidTexture2D   = ole.NewGUID("{6F15AAF2-D208-4E89-9AB4-489535D34F9C}")
	iidDXGIOutput1 = ole.NewGUID("{00CDDEA8-939B-4B83-A340-A685226666CC}")
	iidDXGIOutput5 = ole.NewGUID("{80A07424-AB52-42EB-833C-0C42FD282D98}")
)

// comVtblFn returns the function pointer at vtable index idx of obj.
func comVtblFn(obj uintptr, idx int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

// comCall invokes vtable method idx on obj and maps a failing HRESULT to a
// *gpu.Error tagged with op.
func comCall(op string, obj uintptr, idx int, args ...uintptr) error {
	all := make([]uintptr, 0, 1+len(args))
	all = append(all, obj)
	all = append(all, args...)
	ret, _, _ := syscall.SyscallN(comVtblFn(obj, idx), all...)
	if int32(ret) < 0 {
		return gpu.NewError(op, ret)
	}
	return nil
}

// comValue invokes a vtable method that returns a value instead of an
// HRESULT.
func comValue(obj uintptr, idx int, args ...uintptr) uintptr {
	all := make([]uintptr, 0, 1+len(args))
	all = append(all, obj)
	all = append(all, args...)
	ret, _, _ := syscall.SyscallN(comVtblFn(obj, idx), all...)
	return ret
}

// comVoid invokes a vtable method that returns nothing.
func comVoid(obj uintptr, idx int, args ...uintptr) { comValue(obj, idx, args...) }

func comRelease(obj uintptr) {
	if obj != 0 {
		(*ole.IUnknown)(unsafe.Pointer(obj)).Release()
	}
}

func queryInterface(op string, obj uintptr, iid *ole.GUID) (uintptr, error) {
	var out uintptr
	if err := comCall(op, obj, 0, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out))); err != nil {
		return 0, err
	}
	return out, nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// object is the common wrapper for every COM interface handed out through
// the gpu interfaces.
type object struct {
	ptr uintptr
}

func (o *object) Release() {
	comRelease(o.ptr)
	o.ptr = 0
}

func (o *object) comPtr() uintptr { return o.ptr }

type comObject interface {
	comPtr() uintptr
}

// raw returns the COM pointer behind a gpu object, or 0 for nil.
func raw(v any) uintptr {
	if v == nil {
		return 0
	}
	if c, ok := v.(comObject); ok {
		return c.comPtr()
	}
	return 0
}

type texture struct {
	object
	desc gpu.TextureDesc
}

func (t *texture) Desc() gpu.TextureDesc { return t.desc }

func newTexture(ptr uintptr) *texture {
	var nd textureDesc
	comVoid(ptr, 10, uintptr(unsafe.Pointer(&nd)))
	return &texture{object: object{ptr: ptr}, desc: nd.toGPU()}
}
