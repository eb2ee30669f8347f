//go:build !windows

package main

import (
	"errors"

	"github.com/breeze-rmm/deskmirror/internal/config"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/shader"
)

var errNoBackend = errors.New("deskmirror needs Direct3D 11 and desktop duplication, which are only available on Windows")

func openBackend(uintptr, gpu.Size, *config.Config) (*gpu.GraphicsContext, shader.Compiler, func(), error) {
	return nil, nil, nil, errNoBackend
}
