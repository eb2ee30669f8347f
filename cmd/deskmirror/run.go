package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/breeze-rmm/deskmirror/internal/app"
	"github.com/breeze-rmm/deskmirror/internal/capture"
	"github.com/breeze-rmm/deskmirror/internal/config"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
	"github.com/breeze-rmm/deskmirror/internal/logging"
	"github.com/breeze-rmm/deskmirror/internal/shader"
	"github.com/breeze-rmm/deskmirror/internal/window"
)

const shutdownTimeout = 5 * time.Second

func runViewer(meshPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer rw.Close()
		logOut = io.MultiWriter(os.Stderr, rw)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, logOut)
	log := logging.WithRun(logging.L("main"), uuid.NewString())
	log.Info("starting deskmirror",
		"version", version,
		"capture", cfg.CaptureEnabled,
		"display", cfg.DisplayIndex,
		"assets", cfg.AssetDir)

	// GLFW and the immediate context both belong to this thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win, err := window.Open(window.Options{
		Width:  cfg.WindowWidth,
		Height: cfg.WindowHeight,
		Title:  cfg.WindowTitle,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	w, h := win.Size()
	size := gpu.Size{Width: w, Height: h}
	gc, compiler, closeBackend, err := openBackend(win.NativeHandle(), size, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	a := app.New(gc, shader.NewLoader(cfg.AssetDir, compiler), appOptions(cfg, win))
	if err := a.Initialize(size, meshPath); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	runErr := win.Run(a)
	if runErr != nil {
		log.Error("render loop stopped", logging.KeyError, runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Warn("shutdown incomplete", logging.KeyError, err)
	}
	log.Info("deskmirror stopped")
	return runErr
}

func appOptions(cfg *config.Config, win *window.Window) app.Options {
	return app.Options{
		CaptureEnabled: cfg.CaptureEnabled,
		Capture: capture.Options{
			Output:     cfg.DisplayIndex,
			Timeout:    time.Duration(cfg.AcquireTimeoutMs) * time.Millisecond,
			TargetSize: gpu.Size{Width: cfg.CaptureWidth, Height: cfg.CaptureHeight},
		},
		CaptureFollowWindow: cfg.CaptureFollowWindow,
		UpdatesPerSecond:    float64(cfg.UpdatesPerSecond),
		FramesPerSecond:     float64(cfg.FramesPerSecond),
		SyncInterval:        uint32(cfg.VSyncInterval),
		ShowTriangle:        cfg.ShowTriangle,
		StatsInterval:       time.Duration(cfg.StatsIntervalSeconds) * time.Second,
		Sampler:             app.NewProcessSampler(),
		SetTitle:            win.SetTitle,
	}
}
