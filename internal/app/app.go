// Package app owns the component set and turns window events into
// resize, update and render ticks.
//
// A render tick binds the backbuffer, lets the capture component draw the
// newest desktop frame into its offscreen target, composites that target as
// a background quad, draws the scene on top and presents.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/breeze-rmm/deskmirror/internal/camera"
	"github.com/breeze-rmm/deskmirror/internal/capture"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/loader"
	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/pacing"
	"github.com/breeze-rmm/deskmirror/internal/render"
	"github.com/breeze-rmm/deskmirror/internal/scene"
)

var log = logging.L("app")

type Options struct {
	CaptureEnabled bool
	Capture        capture.Options
	// CaptureFollowWindow resizes the capture target with the window.
	CaptureFollowWindow bool

	UpdatesPerSecond float64
	// FramesPerSecond caps render ticks; 0 renders on every call.
	FramesPerSecond float64
	SyncInterval    uint32
	ShowTriangle    bool

	StatsInterval time.Duration
	// Sampler adds process CPU and RSS to the stats log; nil omits them.
	Sampler Sampler
	// SetTitle receives the "FPS: N" title once per second.
	SetTitle func(string)
}

// App is driven from a single thread; none of its methods are safe for
// concurrent use.
type App struct {
	opts   Options
	gc     *gpu.GraphicsContext
	shader scene.ProgramLoader

	presenter *render.Presenter
	capture   *capture.Component
	grid      *scene.Grid
	mesh      *scene.Mesh
	triangle  *scene.Triangle
	scene     []scene.Drawable

	camera *camera.Camera
	drag   dragState

	updateGate *pacing.Gate
	renderGate *pacing.Gate
	fps        *pacing.Counter
	stats      *pacing.Gate

	meshes      *loader.Loader
	sinceRender float64
	clock       float64
	sampler     Sampler
}

func New(gc *gpu.GraphicsContext, shaders scene.ProgramLoader, opts Options) *App {
	if opts.UpdatesPerSecond <= 0 {
		opts.UpdatesPerSecond = 60
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 10 * time.Second
	}
	return &App{
		opts:       opts,
		gc:         gc,
		shader:     shaders,
		presenter:  render.NewPresenter(gc),
		updateGate: pacing.NewGate(opts.UpdatesPerSecond),
		renderGate: pacing.NewGate(opts.FramesPerSecond),
		fps:        pacing.NewCounter(1),
		stats:      pacing.NewGate(1 / opts.StatsInterval.Seconds()),
		sampler:    opts.Sampler,
	}
}

// Initialize builds every component for a swapchain created at size and
// queues meshPath, if any, for background loading. On failure everything
// created so far is released.
func (a *App) Initialize(size gpu.Size, meshPath string) error {
	if err := a.init(size); err != nil {
		a.release()
		return err
	}
	a.meshes = loader.New(1, 4, nil)
	if meshPath != "" {
		a.LoadMesh(meshPath)
	}
	log.Info("app initialized", logging.Size(size.Width, size.Height)...)
	return nil
}

func (a *App) init(size gpu.Size) error {
	a.presenter.SyncInterval = a.opts.SyncInterval
	if err := a.presenter.Initialize(size); err != nil {
		return fmt.Errorf("presenter: %w", err)
	}
	a.camera = camera.New(size.Width, size.Height)

	if a.opts.CaptureEnabled {
		a.capture = capture.New(a.shader, a.opts.Capture)
		if err := a.capture.Initialize(a.gc); err != nil {
			a.capture = nil
			return fmt.Errorf("desktop capture: %w", err)
		}
	}

	a.grid = scene.NewGrid(a.shader)
	a.mesh = scene.NewMesh(a.shader)
	a.scene = []scene.Drawable{a.grid, a.mesh}
	if a.opts.ShowTriangle {
		a.triangle = scene.NewTriangle(a.shader)
		a.scene = append(a.scene, a.triangle)
	}
	for i, d := range a.scene {
		if err := d.Initialize(a.gc); err != nil {
			// Only the components already initialized own GPU objects.
			a.scene = a.scene[:i]
			return err
		}
	}
	return nil
}

// LoadMesh parses path in the background; the geometry replaces the
// current mesh on a later update tick.
func (a *App) LoadMesh(path string) bool {
	if !a.meshes.Submit(path) {
		log.Warn("mesh load not queued", logging.KeyPath, path)
		return false
	}
	return true
}

// Resize propagates a window size change. A zero size (minimized window)
// is ignored.
func (a *App) Resize(width, height int) error {
	size := gpu.Size{Width: width, Height: height}
	if !size.Valid() {
		return nil
	}
	a.camera.Resize(width, height)
	if a.capture != nil && a.opts.CaptureFollowWindow {
		if err := a.capture.Resize(size); err != nil {
			return fmt.Errorf("resize capture target: %w", err)
		}
	}
	a.presenter.Resize(size)
	return nil
}

// Update advances the camera filter and uploads finished mesh loads. It
// reports whether an update tick was due.
func (a *App) Update(elapsed float64) (bool, error) {
	if !a.updateGate.Advance(elapsed) {
		return false, nil
	}
	d := &a.drag
	a.camera.Update(d.rdx, d.rdy, d.tdx, d.tdy, d.zoom)

	for _, res := range a.meshes.Poll() {
		if res.Err != nil {
			log.Error("mesh load failed", logging.KeyPath, res.Path, logging.KeyError, res.Err)
			continue
		}
		if err := a.mesh.Upload(a.gc, res.File); err != nil {
			return true, err
		}
		log.Info("mesh loaded", logging.KeyPath, res.Path, "elapsed", res.Elapsed)
	}
	return true, nil
}

// Render runs one render tick when the frame gate allows it and reports
// whether it did.
func (a *App) Render(elapsed float64) (bool, error) {
	a.clock += elapsed
	a.sinceRender += elapsed
	if !a.renderGate.Advance(elapsed) {
		return false, nil
	}
	if err := a.frame(); err != nil {
		return true, err
	}

	if a.fps.Tick(a.sinceRender) && a.opts.SetTitle != nil {
		a.opts.SetTitle(fmt.Sprintf("FPS: %d", int(a.fps.Rate()+0.5)))
	}
	if a.stats.Advance(a.sinceRender) {
		a.reportStats()
	}
	a.sinceRender = 0
	return true, nil
}

func (a *App) frame() error {
	p := a.presenter
	if err := p.PrepareDraw(); err != nil {
		return err
	}

	if a.capture != nil {
		if _, err := a.capture.Tick(a.gc); err != nil {
			return err
		}
		// The tick bound the capture target; restore the backbuffer
		// without depth so the desktop quad stays behind the scene.
		p.UseDepth(false)
		p.Bind()
		a.capture.Composite(a.gc)
		p.UseDepth(true)
		p.Bind()
	}

	for _, d := range a.scene {
		if err := d.Draw(a.gc, a.camera, a.clock); err != nil {
			return err
		}
	}
	return p.Present()
}

func (a *App) MouseButton(button int, pressed bool) {
	if pressed {
		a.drag.press(button)
		return
	}
	a.drag.release(a.camera)
}

func (a *App) MouseMove(x, y float64) { a.drag.move(float32(x), float32(y)) }

func (a *App) Scroll(dy float64) { a.drag.scroll(float32(dy)) }

func (a *App) Camera() *camera.Camera { return a.camera }

func (a *App) Presenter() *render.Presenter { return a.presenter }

// Capture returns the capture component, or nil when capture is disabled.
func (a *App) Capture() *capture.Component { return a.capture }

func (a *App) Mesh() *scene.Mesh { return a.mesh }

// Close stops the mesh loader and releases every GPU object the app owns.
// The graphics context itself belongs to the caller.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.meshes != nil {
		err = a.meshes.Close(ctx)
	}
	a.release()
	return err
}

func (a *App) release() {
	for i := len(a.scene) - 1; i >= 0; i-- {
		a.scene[i].Release()
	}
	a.scene = nil
	if a.capture != nil {
		a.capture.Release()
		a.capture = nil
	}
	a.presenter.Release()
}
