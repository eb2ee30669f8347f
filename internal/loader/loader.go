// Package loader parses mesh files on background workers so the render
// thread never blocks on disk or parsing. Results are collected by polling
// from the thread that owns the GPU device.
package loader

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/stl"
)

var log = logging.L("loader")

// ParseFunc reads and parses one mesh file.
type ParseFunc func(path string) (*stl.File, error)

// Result is the outcome of one submitted path.
type Result struct {
	Path    string
	File    *stl.File
	Err     error
	Elapsed time.Duration
}

// Loader is a bounded worker pool specialised for mesh parsing.
type Loader struct {
	parse   ParseFunc
	queue   chan string
	results chan Result

	wg        sync.WaitGroup
	accepting atomic.Bool
	// outstanding counts submitted paths whose result has not been polled.
	outstanding atomic.Int32
	closeOnce   sync.Once
}

// New starts workers goroutines. At most queueSize results may be
// outstanding at once; Submit refuses work beyond that.
func New(workers, queueSize int, parse ParseFunc) *Loader {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if parse == nil {
		parse = stl.Load
	}
	l := &Loader{
		parse:   parse,
		queue:   make(chan string, queueSize),
		results: make(chan Result, queueSize),
	}
	l.accepting.Store(true)

	for i := 0; i < workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}

	log.Info("mesh loader started", "workers", workers, "queueSize", queueSize)
	return l
}

// Submit queues path for parsing. It returns false when the loader is
// closed or too many results are outstanding.
func (l *Loader) Submit(path string) bool {
	if !l.accepting.Load() {
		return false
	}
	if int(l.outstanding.Add(1)) > cap(l.results) {
		l.outstanding.Add(-1)
		log.Warn("mesh loader queue full, dropping request", logging.KeyPath, path)
		return false
	}
	select {
	case l.queue <- path:
		return true
	default:
		l.outstanding.Add(-1)
		log.Warn("mesh loader queue full, dropping request", logging.KeyPath, path)
		return false
	}
}

// Poll returns every finished result without blocking.
func (l *Loader) Poll() []Result {
	var out []Result
	for {
		select {
		case r := <-l.results:
			l.outstanding.Add(-1)
			out = append(out, r)
		default:
			return out
		}
	}
}

// Pending is the number of submitted paths whose result has not been polled.
func (l *Loader) Pending() int { return int(l.outstanding.Load()) }

// Close stops accepting work and waits for in-flight parses to finish or
// for ctx to expire. Unpolled results are discarded.
func (l *Loader) Close(ctx context.Context) error {
	l.accepting.Store(false)
	l.closeOnce.Do(func() { close(l.queue) })

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("mesh loader stopped")
		return nil
	case <-ctx.Done():
		log.Warn("mesh loader close timed out, abandoning in-flight parses")
		return ctx.Err()
	}
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for path := range l.queue {
		// Capacity is reserved by Submit, so this send never blocks.
		l.results <- l.run(path)
	}
}

func (l *Loader) run(path string) (res Result) {
	start := time.Now()
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while parsing mesh",
				logging.KeyPath, path,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			res.File = nil
			res.Err = fmt.Errorf("parse %s: panic: %v", path, r)
		}
		res.Elapsed = time.Since(start)
	}()

	f, err := l.parse(path)
	if err != nil {
		res.Err = fmt.Errorf("parse %s: %w", path, err)
		return res
	}
	res.File = f
	log.Debug("mesh parsed", logging.KeyPath, path, "facets", len(f.Facets))
	return res
}
