// Package capture mirrors one monitor into an offscreen FrameTarget using
// desktop duplication. Each tick acquires at most one desktop frame, draws
// it as a full-screen quad and releases it before returning.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
)

var log = logging.L("capture")

// DefaultFormats are the desktop formats the capture shaders can sample,
// in preference order.
var DefaultFormats = []gpu.Format{gpu.FormatB8G8R8A8Unorm, gpu.FormatR8G8B8A8Unorm}

// Session is one open duplication of a single output.
type Session struct {
	output int
	dup    gpu.Duplication
	desc   gpu.DuplicationDesc
}

// OpenSession walks device, adapter, output and duplication-capable output
// for display index output.
func OpenSession(dev gpu.Device, output int, formats []gpu.Format) (*Session, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	dup, err := dev.DuplicateOutput(output, formats)
	if err != nil {
		return nil, fmt.Errorf("duplicate output %d: %w", output, err)
	}
	s := &Session{output: output, dup: dup, desc: dup.Desc()}
	log.Info("duplication session opened",
		logging.KeyOutput, output,
		logging.KeyWidth, s.desc.Width,
		logging.KeyHeight, s.desc.Height,
		"format", uint32(s.desc.Format),
		"rotation", s.desc.Rotation,
	)
	return s, nil
}

// Desc describes the duplicated desktop.
func (s *Session) Desc() gpu.DuplicationDesc { return s.desc }

// Acquire waits up to timeout for a desktop update. A timeout returns
// (nil, err) with err matching gpu.ErrWaitTimeout; the caller owns a
// non-nil Frame and must Release it.
func (s *Session) Acquire(timeout time.Duration) (*Frame, error) {
	if s.dup == nil {
		return nil, errors.New("capture: session closed")
	}
	info, tex, err := s.dup.AcquireNextFrame(timeout)
	if err != nil {
		return nil, err
	}
	return &Frame{dup: s.dup, texture: tex, info: info}, nil
}

// WithFrame acquires one frame, runs fn with it and releases it on every
// path out, including a panic in fn. A timeout is returned as is and fn is
// not called.
func (s *Session) WithFrame(timeout time.Duration, fn func(*Frame) error) (err error) {
	f, err := s.Acquire(timeout)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(f)
}

// Close releases the duplication. The session cannot be reused.
func (s *Session) Close() {
	if s.dup != nil {
		s.dup.Release()
		s.dup = nil
	}
}
