package gpu

import (
	"errors"
	"fmt"
)

// HRESULT codes the pipeline distinguishes.
const (
	CodeInvalidCall           uint32 = 0x887A0001
	CodeUnsupported           uint32 = 0x887A0004
	CodeDeviceRemoved         uint32 = 0x887A0005
	CodeDeviceReset           uint32 = 0x887A0007
	CodeNotCurrentlyAvailable uint32 = 0x887A0022
	CodeAccessLost            uint32 = 0x887A0026
	CodeWaitTimeout           uint32 = 0x887A0027
	CodeOutOfMemory           uint32 = 0x8007000E
	CodeInvalidArg            uint32 = 0x80070057
	CodeFail                  uint32 = 0x80004005
)

var (
	// ErrWaitTimeout means no new desktop frame arrived within the acquire timeout.
	ErrWaitTimeout = errors.New("gpu: wait timeout")
	// ErrAccessLost means the duplication session is no longer valid and must be reopened.
	ErrAccessLost = errors.New("gpu: duplication access lost")
	// ErrDeviceLost means the device was removed or reset; it is not recoverable here.
	ErrDeviceLost = errors.New("gpu: device lost")
	// ErrUnsupported means the output cannot be duplicated (e.g. a remote session).
	ErrUnsupported = errors.New("gpu: unsupported")
)

// Error is a failed graphics API call.
type Error struct {
	Op   string
	Code uint32
}

func (e *Error) Error() string {
	if name := codeName(e.Code); name != "" {
		return fmt.Sprintf("%s: %s (HRESULT 0x%08X)", e.Op, name, e.Code)
	}
	return fmt.Sprintf("%s: HRESULT 0x%08X", e.Op, e.Code)
}

// Unwrap maps the HRESULT onto the package sentinels.
func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeWaitTimeout:
		return ErrWaitTimeout
	case CodeAccessLost:
		return ErrAccessLost
	case CodeDeviceRemoved, CodeDeviceReset:
		return ErrDeviceLost
	case CodeUnsupported:
		return ErrUnsupported
	}
	return nil
}

// NewError returns an *Error for op and the raw HRESULT value.
func NewError(op string, hr uintptr) error {
	return &Error{Op: op, Code: uint32(hr)}
}

// HResult extracts the HRESULT from err, if it carries one.
func HResult(err error) (uint32, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code, true
	}
	return 0, false
}

func codeName(code uint32) string {
	switch code {
	case CodeInvalidCall:
		return "DXGI_ERROR_INVALID_CALL"
	case CodeUnsupported:
		return "DXGI_ERROR_UNSUPPORTED"
	case CodeDeviceRemoved:
		return "DXGI_ERROR_DEVICE_REMOVED"
	case CodeDeviceReset:
		return "DXGI_ERROR_DEVICE_RESET"
	case CodeNotCurrentlyAvailable:
		return "DXGI_ERROR_NOT_CURRENTLY_AVAILABLE"
	case CodeAccessLost:
		return "DXGI_ERROR_ACCESS_LOST"
	case CodeWaitTimeout:
		return "DXGI_ERROR_WAIT_TIMEOUT"
	case CodeOutOfMemory:
		return "E_OUTOFMEMORY"
	case CodeInvalidArg:
		return "E_INVALIDARG"
	case CodeFail:
		return "E_FAIL"
	}
	return ""
}
