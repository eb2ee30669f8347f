package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// ValidationResult separates problems that prevent startup from those that
// were corrected in place.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool { return len(r.Fatals) > 0 }

// AllErrors returns fatals followed by warnings.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	return append(all, r.Warnings...)
}

func clamp(warns *[]error, name string, v *int, lo, hi int) {
	if *v < lo {
		*warns = append(*warns, fmt.Errorf("%s %d is below minimum %d, clamping", name, *v, lo))
		*v = lo
	} else if *v > hi {
		*warns = append(*warns, fmt.Errorf("%s %d exceeds maximum %d, clamping", name, *v, hi))
		*v = hi
	}
}

// ValidateTiered checks the config. Out-of-range numbers are clamped to a
// safe range and reported as warnings; values that cannot be corrected are
// fatal.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	if c.DisplayIndex < 0 {
		r.Fatals = append(r.Fatals, fmt.Errorf("display_index %d must not be negative", c.DisplayIndex))
	}

	if c.AssetDir != "" {
		if fi, err := os.Stat(c.AssetDir); err == nil && !fi.IsDir() {
			r.Fatals = append(r.Fatals, fmt.Errorf("asset_dir %q is not a directory", c.AssetDir))
		}
	}

	clamp(&r.Warnings, "window_width", &c.WindowWidth, 64, 16384)
	clamp(&r.Warnings, "window_height", &c.WindowHeight, 64, 16384)
	clamp(&r.Warnings, "capture_width", &c.CaptureWidth, 16, 16384)
	clamp(&r.Warnings, "capture_height", &c.CaptureHeight, 16, 16384)
	// A zero timeout busy-polls the duplication; cap at one second.
	clamp(&r.Warnings, "acquire_timeout_ms", &c.AcquireTimeoutMs, 1, 1000)
	clamp(&r.Warnings, "updates_per_second", &c.UpdatesPerSecond, 1, 1000)
	// 0 means unlimited.
	clamp(&r.Warnings, "frames_per_second", &c.FramesPerSecond, 0, 10000)
	clamp(&r.Warnings, "vsync_interval", &c.VSyncInterval, 0, 4)
	clamp(&r.Warnings, "stats_interval_seconds", &c.StatsIntervalSeconds, 1, 3600)
	clamp(&r.Warnings, "log_max_size_mb", &c.LogMaxSizeMB, 1, 1024)
	clamp(&r.Warnings, "log_max_backups", &c.LogMaxBackups, 0, 20)

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	return r
}

// Validate runs ValidateTiered, logs every problem as a warning and returns
// them all.
func (c *Config) Validate() []error {
	errs := c.ValidateTiered().AllErrors()
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}
	return errs
}
