// Package shader loads HLSL sources from the asset directory, compiles them
// and links the result into a vertex/pixel/input-layout program.
package shader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
)

var log = logging.L("shader")

const (
	EntryVertex  = "VS"
	EntryPixel   = "PS"
	TargetVertex = "vs_4_0"
	TargetPixel  = "ps_4_0"
)

// Compiler turns shader source into bytecode.
type Compiler interface {
	Compile(source []byte, name, entry, target string) ([]byte, error)
}

// ProgramSpec names the two source files of a program and its vertex layout.
type ProgramSpec struct {
	Name       string
	VertexFile string
	PixelFile  string
	Layout     []gpu.InputElement
}

// Program is a linked vertex shader, pixel shader and input layout.
type Program struct {
	Name   string
	Vertex gpu.VertexShader
	Pixel  gpu.PixelShader
	Layout gpu.InputLayout
}

// Bind sets the program's layout and shaders on ctx.
func (p *Program) Bind(ctx gpu.Context) {
	ctx.IASetInputLayout(p.Layout)
	ctx.VSSetShader(p.Vertex)
	ctx.PSSetShader(p.Pixel)
}

func (p *Program) Release() {
	if p == nil {
		return
	}
	gpu.SafeRelease(p.Layout, p.Pixel, p.Vertex)
	p.Layout, p.Pixel, p.Vertex = nil, nil, nil
}

// Loader reads sources from Dir.
type Loader struct {
	Dir      string
	Compiler Compiler
	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

func NewLoader(dir string, c Compiler) *Loader {
	return &Loader{Dir: dir, Compiler: c, ReadFile: os.ReadFile}
}

// Compile reads file and compiles entry for target.
func (l *Loader) Compile(file, entry, target string) ([]byte, error) {
	path := filepath.Join(l.Dir, file)
	read := l.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	src, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("read shader %s: %w", file, err)
	}
	code, err := l.Compiler.Compile(src, file, entry, target)
	if err != nil {
		return nil, fmt.Errorf("compile shader %s (%s/%s): %w", file, entry, target, err)
	}
	return code, nil
}

// Load compiles both stages of spec and creates the program objects on dev.
// On failure nothing created by this call is left alive.
func (l *Loader) Load(dev gpu.Device, spec ProgramSpec) (*Program, error) {
	vsCode, err := l.Compile(spec.VertexFile, EntryVertex, TargetVertex)
	if err != nil {
		return nil, err
	}
	psCode, err := l.Compile(spec.PixelFile, EntryPixel, TargetPixel)
	if err != nil {
		return nil, err
	}

	p := &Program{Name: spec.Name}
	if p.Vertex, err = dev.CreateVertexShader(vsCode); err != nil {
		return nil, fmt.Errorf("%s: create vertex shader: %w", spec.Name, err)
	}
	if p.Pixel, err = dev.CreatePixelShader(psCode); err != nil {
		p.Release()
		return nil, fmt.Errorf("%s: create pixel shader: %w", spec.Name, err)
	}
	if p.Layout, err = dev.CreateInputLayout(spec.Layout, vsCode); err != nil {
		p.Release()
		return nil, fmt.Errorf("%s: create input layout: %w", spec.Name, err)
	}
	log.Info("program loaded", "program", spec.Name, "vs", spec.VertexFile, "ps", spec.PixelFile)
	return p, nil
}
