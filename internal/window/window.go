// Package window opens the GLFW window the presenter draws into and turns
// its callbacks into resize, input and tick events.
//
// GLFW must be driven from the thread that called Open; callers lock the OS
// thread before opening.
package window

import (
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/breeze-rmm/deskmirror/internal/logging"
)

var log = logging.L("window")

type Options struct {
	Width, Height int
	Title         string
}

// Handler receives window events. Update and Render report whether they did
// any work; when neither did the loop sleeps briefly instead of spinning.
type Handler interface {
	Resize(width, height int) error
	Update(elapsed float64) (bool, error)
	Render(elapsed float64) (bool, error)
	MouseButton(button int, pressed bool)
	MouseMove(x, y float64)
	Scroll(dy float64)
}

type Window struct {
	glw *glfw.Window
	// cbErr holds the first error returned from a callback; Run stops on it.
	cbErr error
}

// Open initialises GLFW and creates a window with no client API, since the
// swapchain is created directly against the native handle.
func Open(opts Options) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	glw, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	log.Info("window opened", logging.Size(opts.Width, opts.Height)...)
	return &Window{glw: glw}, nil
}

// NativeHandle is the platform window handle (HWND on Windows), or 0 where
// the platform has none the backend can use.
func (w *Window) NativeHandle() uintptr { return nativeHandle(w.glw) }

// Size is the framebuffer size in pixels.
func (w *Window) Size() (int, int) { return w.glw.GetFramebufferSize() }

func (w *Window) SetTitle(title string) { w.glw.SetTitle(title) }

// Run pumps events until the window is closed or a handler returns an
// error.
func (w *Window) Run(h Handler) error {
	w.glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.keep(h.Resize(width, height))
	})
	w.glw.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		h.MouseMove(x, y)
	})
	w.glw.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			h.MouseButton(int(b), true)
		case glfw.Release:
			h.MouseButton(int(b), false)
		}
	})
	w.glw.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		h.Scroll(dy)
	})

	last := glfw.GetTime()
	for !w.glw.ShouldClose() {
		glfw.PollEvents()
		if w.cbErr != nil {
			return w.cbErr
		}

		now := glfw.GetTime()
		elapsed := now - last
		last = now

		updated, err := h.Update(elapsed)
		if err != nil {
			return err
		}
		rendered, err := h.Render(elapsed)
		if err != nil {
			return err
		}
		if !updated && !rendered {
			time.Sleep(time.Millisecond)
		}
	}
	log.Info("window closed")
	return nil
}

func (w *Window) keep(err error) {
	if err != nil && w.cbErr == nil {
		w.cbErr = err
	}
}

func (w *Window) Close() {
	if w.glw != nil {
		w.glw.Destroy()
		w.glw = nil
	}
	glfw.Terminate()
}
