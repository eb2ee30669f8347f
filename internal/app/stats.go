package app

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// Sampler reports resource usage of the running process.
type Sampler interface {
	Sample() (cpuPercent float64, rssBytes uint64, err error)
}

type processSampler struct {
	p *process.Process
}

// NewProcessSampler samples the current process. It returns nil when the
// process cannot be opened.
func NewProcessSampler() Sampler {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("process sampler unavailable", "error", err)
		return nil
	}
	return &processSampler{p: p}
}

func (s *processSampler) Sample() (float64, uint64, error) {
	// Percent(0) measures since the previous call.
	cpu, err := s.p.Percent(0)
	if err != nil {
		return 0, 0, err
	}
	mem, err := s.p.MemoryInfo()
	if err != nil {
		return cpu, 0, err
	}
	return cpu, mem.RSS, nil
}

// reportStats logs the render rate, process usage and capture counters.
func (a *App) reportStats() {
	args := []any{
		"fps", int(a.fps.Rate() + 0.5),
		"presents", a.presenter.Presents(),
		"rebuilds", a.presenter.Rebuilds(),
	}
	if a.capture != nil {
		st := a.capture.Stats()
		args = append(args,
			"captureFrames", st.Frames,
			"captureTimeouts", st.Timeouts,
			"sessionsLost", st.SessionsLost,
		)
	}
	if a.sampler != nil {
		if cpu, rss, err := a.sampler.Sample(); err == nil {
			args = append(args, "cpuPercent", cpu, "rssMB", rss/1024/1024)
		} else {
			log.Debug("process sample failed", "error", err)
		}
	}
	log.Info("render stats", args...)
}
