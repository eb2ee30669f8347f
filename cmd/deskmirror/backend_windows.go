//go:build windows

package main

import (
	"errors"

	"github.com/go-ole/go-ole"

	"github.com/breeze-rmm/deskmirror/internal/config"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/gpu/d3d11"
	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/shader"
)

// openBackend initialises COM on the render thread and creates the D3D11
// device and swapchain for hwnd. The returned closer releases the context
// and uninitialises COM.
func openBackend(hwnd uintptr, size gpu.Size, cfg *config.Config) (*gpu.GraphicsContext, shader.Compiler, func(), error) {
	comOK := comInitialized(ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED))

	gc, err := d3d11.New(d3d11.Options{
		Window: hwnd,
		Size:   size,
		Format: gpu.FormatR8G8B8A8Unorm,
		Debug:  cfg.DebugDevice,
	})
	if err != nil {
		if comOK {
			ole.CoUninitialize()
		}
		return nil, nil, nil, err
	}
	closer := func() {
		gc.Release()
		if comOK {
			ole.CoUninitialize()
		}
	}
	return gc, d3d11.Compiler{Debug: cfg.DebugDevice}, closer, nil
}

// sFalse is returned by CoInitializeEx when COM was already initialised on
// this thread. It still takes a reference that CoUninitialize must drop.
const sFalse = 1

// comInitialized reports whether a CoInitializeEx result must be balanced
// with CoUninitialize. A mode mismatch leaves COM usable but unreferenced.
func comInitialized(err error) bool {
	if err == nil {
		return true
	}
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
		return true
	}
	logging.L("main").Debug("CoInitializeEx", logging.KeyError, err)
	return false
}
