package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/breeze-rmm/deskmirror/internal/config"
	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

func TestAppOptionsFromDefaults(t *testing.T) {
	opts := appOptions(config.Default(), nil)

	if !opts.CaptureEnabled {
		t.Fatal("capture should be enabled by default")
	}
	if opts.Capture.Timeout != 16*time.Millisecond {
		t.Fatalf("acquire timeout = %v, want 16ms", opts.Capture.Timeout)
	}
	if opts.Capture.TargetSize != (gpu.Size{Width: 640, Height: 360}) {
		t.Fatalf("capture target = %+v, want 640x360", opts.Capture.TargetSize)
	}
	if opts.StatsInterval != 10*time.Second {
		t.Fatalf("stats interval = %v, want 10s", opts.StatsInterval)
	}
	if opts.UpdatesPerSecond != 60 || opts.FramesPerSecond != 240 {
		t.Fatalf("cadence = %v/%v, want 60/240", opts.UpdatesPerSecond, opts.FramesPerSecond)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	logLevel, assetDir = "debug", t.TempDir()
	t.Cleanup(func() { logLevel, assetDir = "", "" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.AssetDir != assetDir {
		t.Fatalf("asset dir = %q, want %q", cfg.AssetDir, assetDir)
	}
}

func TestLoadConfigRejectsFileAsAssetDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	assetDir = file
	t.Cleanup(func() { assetDir = "" })

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected a fatal config error for a file used as asset dir")
	}
}
