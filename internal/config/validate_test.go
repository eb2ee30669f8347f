package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateTieredNegativeDisplayIsFatal(t *testing.T) {
	cfg := Default()
	cfg.DisplayIndex = -1
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("negative display index should be fatal")
	}
	if !strings.Contains(result.Fatals[0].Error(), "display_index") {
		t.Fatalf("fatal should name the field: %v", result.Fatals[0])
	}
}

func TestValidateTieredAssetDirFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	cfg.AssetDir = path
	if !cfg.ValidateTiered().HasFatals() {
		t.Fatal("asset_dir pointing at a file should be fatal")
	}
}

func TestValidateTieredMissingAssetDirIsNotFatal(t *testing.T) {
	cfg := Default()
	cfg.AssetDir = filepath.Join(t.TempDir(), "missing")
	if result := cfg.ValidateTiered(); result.HasFatals() {
		t.Fatalf("missing asset dir is reported at shader load, got %v", result.Fatals)
	}
}

func TestValidateTieredClampingIsWarning(t *testing.T) {
	cases := []struct {
		name string
		set  func(*Config)
		get  func(*Config) int
		want int
	}{
		{"window width low", func(c *Config) { c.WindowWidth = 0 }, func(c *Config) int { return c.WindowWidth }, 64},
		{"capture height high", func(c *Config) { c.CaptureHeight = 1 << 20 }, func(c *Config) int { return c.CaptureHeight }, 16384},
		{"zero timeout", func(c *Config) { c.AcquireTimeoutMs = 0 }, func(c *Config) int { return c.AcquireTimeoutMs }, 1},
		{"negative fps", func(c *Config) { c.FramesPerSecond = -5 }, func(c *Config) int { return c.FramesPerSecond }, 0},
		{"zero updates", func(c *Config) { c.UpdatesPerSecond = 0 }, func(c *Config) int { return c.UpdatesPerSecond }, 1},
		{"vsync high", func(c *Config) { c.VSyncInterval = 9 }, func(c *Config) int { return c.VSyncInterval }, 4},
		{"stats zero", func(c *Config) { c.StatsIntervalSeconds = 0 }, func(c *Config) int { return c.StatsIntervalSeconds }, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.set(cfg)
			result := cfg.ValidateTiered()
			if result.HasFatals() {
				t.Fatalf("clamped value should be warning, not fatal: %v", result.Fatals)
			}
			if len(result.Warnings) != 1 {
				t.Fatalf("warnings = %v, want exactly one", result.Warnings)
			}
			if got := tc.get(cfg); got != tc.want {
				t.Fatalf("clamped to %d, want %d", got, tc.want)
			}
		})
	}
}

func TestValidateTieredUnlimitedFramesIsValid(t *testing.T) {
	cfg := Default()
	cfg.FramesPerSecond = 0
	if result := cfg.ValidateTiered(); len(result.AllErrors()) != 0 {
		t.Fatalf("fps 0 means unlimited, got %v", result.AllErrors())
	}
}

func TestValidateTieredUnknownLogLevelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown log level should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for unknown log level")
	}
}

func TestValidateTieredInvalidLogFormatIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log format should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for invalid log format")
	}
}

func TestHasFatals(t *testing.T) {
	r := ValidationResult{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.Fatals = append(r.Fatals, fmt.Errorf("test error"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}

func TestAllErrorsReturnsBoth(t *testing.T) {
	cfg := Default()
	cfg.DisplayIndex = -2 // fatal
	cfg.LogFormat = "xml" // warning
	result := cfg.ValidateTiered()

	all := result.AllErrors()
	if len(all) != 2 {
		t.Fatalf("AllErrors() returned %d errors, want 2", len(all))
	}
	if !strings.Contains(all[0].Error(), "display_index") {
		t.Fatalf("fatals should come first, got %v", all)
	}
}

func TestDefaultConfigHasNoErrors(t *testing.T) {
	cfg := Default()
	cfg.AssetDir = t.TempDir()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Fatalf("default config has errors: %v", errs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WindowWidth != 1200 || cfg.WindowHeight != 800 || cfg.FramesPerSecond != 240 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskmirror.yaml")
	yaml := "window_width: 1024\ncapture_follow_window: false\nlog_format: json\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DESKMIRROR_FRAMES_PER_SECOND", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WindowWidth != 1024 {
		t.Fatalf("WindowWidth = %d, want 1024 from file", cfg.WindowWidth)
	}
	if cfg.WindowHeight != 800 {
		t.Fatalf("WindowHeight = %d, want default 800", cfg.WindowHeight)
	}
	if cfg.CaptureFollowWindow {
		t.Fatal("capture_follow_window should be false from file")
	}
	if cfg.FramesPerSecond != 120 {
		t.Fatalf("FramesPerSecond = %d, want 120 from env", cfg.FramesPerSecond)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("LogFormat = %q", cfg.LogFormat)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deskmirror.yaml")
	cfg := Default()
	cfg.DisplayIndex = 1
	cfg.ShowTriangle = true
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
