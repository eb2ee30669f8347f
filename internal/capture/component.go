package capture

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/render"
	"github.com/breeze-rmm/deskmirror/internal/scene"
	"github.com/breeze-rmm/deskmirror/internal/shader"
)

const (
	DefaultTimeout        = 16 * time.Millisecond
	DefaultReopenInterval = 500 * time.Millisecond
	DefaultMaxReopenFails = 20

	quadStride = 20
	diagEvery  = 100
)

var Program = shader.ProgramSpec{
	Name:       "capture",
	VertexFile: "VertexShader.hlsl",
	PixelFile:  "PixelShader.hlsl",
	Layout: []gpu.InputElement{
		{Semantic: "POSITION", Format: gpu.FormatR32G32B32Float, Offset: 0},
		{Semantic: "TEXCOORD", Format: gpu.FormatR32G32Float, Offset: 12},
	},
}

// quadVertices covers clip space with two triangles; v runs top-down so the
// desktop appears upright.
var quadVertices = [6][5]float32{
	{-1, -1, 0, 0, 1},
	{-1, 1, 0, 0, 0},
	{1, -1, 0, 1, 1},
	{1, -1, 0, 1, 1},
	{-1, 1, 0, 0, 0},
	{1, 1, 0, 1, 0},
}

// Outcome is the result of one capture tick.
type Outcome int

const (
	// NoFrame: the desktop did not change within the timeout.
	NoFrame Outcome = iota
	// Rendered: a frame was acquired, drawn into the target and released.
	Rendered
	// SessionLost: the session was dropped (or could not be reopened yet).
	SessionLost
	// Failed: the tick returned a fatal error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NoFrame:
		return "no-frame"
	case Rendered:
		return "rendered"
	case SessionLost:
		return "session-lost"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type Options struct {
	// Output is the display index on the device's adapter.
	Output  int
	Timeout time.Duration
	// Formats the duplication may deliver, in preference order.
	Formats      []gpu.Format
	TargetFormat gpu.Format
	// TargetSize is the initial capture surface; zero means 640x360.
	TargetSize       gpu.Size
	ReopenInterval   time.Duration
	MaxReopenFailure int
}

// Stats counts tick outcomes since Initialize.
type Stats struct {
	Ticks          uint64
	Frames         uint64
	Timeouts       uint64
	Accumulated    uint64
	SessionsOpened uint64
	SessionsLost   uint64
}

// Component owns the duplication session, the capture program and the
// FrameTarget the desktop is drawn into.
type Component struct {
	opts   Options
	loader scene.ProgramLoader
	now    func() time.Time

	target  *render.FrameTarget
	session *Session
	program *shader.Program
	quad    gpu.Buffer
	sampler gpu.SamplerState

	// pending is the size requested by Resize, applied on the next Tick.
	pending gpu.Size
	// blank is set while the target holds nothing drawn since it was created.
	blank bool

	reopenFails int
	nextReopen  time.Time
	stats       Stats
}

var _ scene.Drawable = (*Component)(nil)

func New(loader scene.ProgramLoader, opts Options) *Component {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.TargetFormat == gpu.FormatUnknown {
		opts.TargetFormat = gpu.FormatR8G8B8A8Unorm
	}
	if !opts.TargetSize.Valid() {
		opts.TargetSize = render.DefaultTargetSize
	}
	if opts.ReopenInterval <= 0 {
		opts.ReopenInterval = DefaultReopenInterval
	}
	if opts.MaxReopenFailure <= 0 {
		opts.MaxReopenFailure = DefaultMaxReopenFails
	}
	return &Component{
		opts:   opts,
		loader: loader,
		now:    time.Now,
		target: render.NewFrameTarget(opts.TargetFormat),
	}
}

// Initialize creates the target, program, quad and sampler and opens the
// first session. Nothing is left allocated on failure.
func (c *Component) Initialize(gc *gpu.GraphicsContext) error {
	if err := c.init(gc); err != nil {
		c.Release()
		return err
	}
	return nil
}

func (c *Component) init(gc *gpu.GraphicsContext) error {
	dev := gc.Device
	if err := c.target.Resize(dev, c.opts.TargetSize); err != nil {
		return err
	}
	c.target.Clear(gc.Context)
	prog, err := c.loader.Load(dev, Program)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	c.program = prog

	var data []byte
	for _, v := range quadVertices {
		data = gpu.AppendFloat32s(data, v[:]...)
	}
	c.quad, err = dev.CreateBuffer(gpu.BufferDesc{
		ByteWidth: uint32(len(data)),
		Usage:     gpu.UsageDefault,
		BindFlags: gpu.BindVertexBuffer,
	}, data)
	if err != nil {
		return fmt.Errorf("capture: create quad buffer: %w", err)
	}
	c.sampler, err = dev.CreateSamplerState(gpu.SamplerDesc{
		Filter:   gpu.FilterMinMagMipLinear,
		AddressU: gpu.AddressClamp,
		AddressV: gpu.AddressClamp,
		AddressW: gpu.AddressClamp,
		MaxLOD:   math.MaxFloat32,
	})
	if err != nil {
		return fmt.Errorf("capture: create sampler: %w", err)
	}
	return c.open(dev)
}

func (c *Component) open(dev gpu.Device) error {
	s, err := OpenSession(dev, c.opts.Output, c.opts.Formats)
	if err != nil {
		return err
	}
	c.session = s
	c.stats.SessionsOpened++
	return nil
}

// Draw runs one capture tick.
func (c *Component) Draw(gc *gpu.GraphicsContext, _ scene.Camera, _ float64) error {
	_, err := c.Tick(gc)
	return err
}

// Tick applies a pending resize, then acquires the next desktop frame and,
// if one arrived, renders it into the target. A timeout leaves the last
// image untouched. Access loss closes the session; it is reopened on a later
// tick.
func (c *Component) Tick(gc *gpu.GraphicsContext) (Outcome, error) {
	c.stats.Ticks++
	if err := c.applyResize(gc.Device); err != nil {
		return Failed, err
	}
	out, err := c.tick(gc)
	if err == nil && c.blank {
		// Nothing was drawn into the new target; show the empty colour
		// rather than undefined texture contents.
		c.target.Clear(gc.Context)
		c.blank = false
	}
	return out, err
}

func (c *Component) applyResize(dev gpu.Device) error {
	if !c.pending.Valid() {
		return nil
	}
	size := c.pending
	c.pending = gpu.Size{}
	if size == c.target.Size() && c.target.Ready() {
		return nil
	}
	if err := c.target.Resize(dev, size); err != nil {
		return fmt.Errorf("resize capture target: %w", err)
	}
	c.blank = true
	return nil
}

func (c *Component) tick(gc *gpu.GraphicsContext) (Outcome, error) {
	if c.session == nil {
		ok, err := c.reopen(gc.Device)
		if err != nil {
			return Failed, err
		}
		if !ok {
			return SessionLost, nil
		}
	}

	err := c.session.WithFrame(c.opts.Timeout, func(f *Frame) error {
		return c.render(gc, f)
	})
	switch {
	case err == nil:
		c.stats.Frames++
		return Rendered, nil
	case errors.Is(err, gpu.ErrWaitTimeout):
		c.stats.Timeouts++
		if c.stats.Timeouts == 1 || c.stats.Timeouts%diagEvery == 0 {
			log.Debug("capture diagnostic",
				"timeouts", c.stats.Timeouts,
				"frames", c.stats.Frames,
				"ticks", c.stats.Ticks)
		}
		return NoFrame, nil
	case errors.Is(err, gpu.ErrAccessLost):
		code, _ := gpu.HResult(err)
		log.Warn("duplication access lost, session will reopen", logging.HResult(code))
		c.dropSession()
		return SessionLost, nil
	default:
		return Failed, fmt.Errorf("capture tick: %w", err)
	}
}

func (c *Component) render(gc *gpu.GraphicsContext, f *Frame) error {
	c.stats.Accumulated += uint64(f.Info().AccumulatedFrames)
	srv, err := f.ShaderResourceView(gc.Device)
	if err != nil {
		return err
	}
	ctx := gc.Context
	if err := c.target.PrepareDraw(ctx); err != nil {
		return err
	}
	c.drawQuad(ctx, srv)
	c.blank = false
	return nil
}

func (c *Component) drawQuad(ctx gpu.Context, srv gpu.ShaderResourceView) {
	c.program.Bind(ctx)
	ctx.IASetPrimitiveTopology(gpu.TopologyTriangleList)
	ctx.IASetVertexBuffer(c.quad, quadStride, 0)
	ctx.PSSetShaderResource(0, srv)
	ctx.PSSetSampler(0, c.sampler)
	ctx.Draw(uint32(len(quadVertices)), 0)
	ctx.PSSetShaderResource(0, nil)
}

// Composite draws the last captured image as a full-screen quad into
// whatever target is currently bound.
func (c *Component) Composite(gc *gpu.GraphicsContext) {
	if !c.target.Ready() || c.program == nil {
		return
	}
	c.drawQuad(gc.Context, c.target.ShaderResourceView())
}

func (c *Component) reopen(dev gpu.Device) (bool, error) {
	now := c.now()
	if now.Before(c.nextReopen) {
		return false, nil
	}
	if err := c.open(dev); err != nil {
		c.reopenFails++
		c.nextReopen = now.Add(c.opts.ReopenInterval)
		if c.reopenFails >= c.opts.MaxReopenFailure {
			return false, fmt.Errorf("reopen duplication after %d attempts: %w", c.reopenFails, err)
		}
		log.Warn("reopen duplication failed", logging.KeyError, err, "attempt", c.reopenFails)
		return false, nil
	}
	c.reopenFails = 0
	return true, nil
}

func (c *Component) dropSession() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
		c.stats.SessionsLost++
	}
	c.nextReopen = time.Time{}
}

// Resize requests a new capture surface size. The target is rebuilt once at
// the start of the next Tick however many requests arrive in between. The
// session is not touched.
func (c *Component) Resize(size gpu.Size) error {
	if !size.Valid() {
		return fmt.Errorf("resize capture target to %dx%d: %w", size.Width, size.Height, render.ErrInvalidSize)
	}
	c.pending = size
	return nil
}

// PendingSize is the size the next Tick will apply, or the zero size.
func (c *Component) PendingSize() gpu.Size { return c.pending }

func (c *Component) Target() *render.FrameTarget { return c.target }

// Session returns the open session, or nil while it is being reopened.
func (c *Component) Session() *Session { return c.session }

func (c *Component) Stats() Stats { return c.stats }

func (c *Component) Release() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
	gpu.SafeRelease(c.sampler, c.quad)
	c.sampler, c.quad = nil, nil
	c.program.Release()
	c.program = nil
	c.target.Release()
}
