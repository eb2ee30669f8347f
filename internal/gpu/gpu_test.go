package gpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorUnwrapsToSentinels(t *testing.T) {
	cases := []struct {
		code uint32
		want error
	}{
		{CodeWaitTimeout, ErrWaitTimeout},
		{CodeAccessLost, ErrAccessLost},
		{CodeDeviceRemoved, ErrDeviceLost},
		{CodeDeviceReset, ErrDeviceLost},
		{CodeUnsupported, ErrUnsupported},
	}
	for _, tc := range cases {
		err := fmt.Errorf("capture tick: %w", &Error{Op: "AcquireNextFrame", Code: tc.code})
		if !errors.Is(err, tc.want) {
			t.Fatalf("code 0x%08X: errors.Is(%v) = false", tc.code, tc.want)
		}
	}

	err := &Error{Op: "CreateTexture2D", Code: CodeOutOfMemory}
	if errors.Is(err, ErrWaitTimeout) || errors.Is(err, ErrDeviceLost) {
		t.Fatal("E_OUTOFMEMORY should not match any sentinel")
	}
}

func TestErrorMessageNamesCallAndCode(t *testing.T) {
	msg := (&Error{Op: "ResizeBuffers", Code: CodeInvalidCall}).Error()
	for _, want := range []string{"ResizeBuffers", "DXGI_ERROR_INVALID_CALL", "0x887A0001"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
	if msg := (&Error{Op: "Draw", Code: 0x80001234}).Error(); msg != "Draw: HRESULT 0x80001234" {
		t.Fatalf("message = %q", msg)
	}
}

func TestHResult(t *testing.T) {
	code, ok := HResult(fmt.Errorf("wrap: %w", NewError("Present", uintptr(CodeDeviceReset))))
	if !ok || code != CodeDeviceReset {
		t.Fatalf("HResult = 0x%08X, %v", code, ok)
	}
	if _, ok := HResult(errors.New("plain")); ok {
		t.Fatal("plain error should carry no HRESULT")
	}
}

func TestRoundUp16(t *testing.T) {
	for in, want := range map[int]int{0: 0, 1: 16, 16: 16, 17: 32, 192: 192, 272: 272, 200: 208} {
		if got := RoundUp16(in); got != want {
			t.Fatalf("RoundUp16(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAppendFloat32s(t *testing.T) {
	b := AppendFloat32s(nil, 1, -2)
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	// 1.0f is 0x3F800000 little-endian.
	if b[0] != 0x00 || b[3] != 0x3F || b[2] != 0x80 {
		t.Fatalf("unexpected encoding % x", b[:4])
	}
}

func TestViewportFor(t *testing.T) {
	vp := ViewportFor(Size{Width: 800, Height: 600})
	if vp != (Viewport{Width: 800, Height: 600, MaxDepth: 1}) {
		t.Fatalf("viewport = %+v", vp)
	}
	if (Size{Width: 0, Height: 10}).Valid() {
		t.Fatal("zero width must be invalid")
	}
}
