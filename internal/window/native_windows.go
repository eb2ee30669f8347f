package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func nativeHandle(glw *glfw.Window) uintptr {
	return uintptr(unsafe.Pointer(glw.GetWin32Window()))
}
