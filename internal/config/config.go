package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	WindowWidth  int    `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int    `mapstructure:"window_height" yaml:"window_height"`
	WindowTitle  string `mapstructure:"window_title" yaml:"window_title"`

	CaptureEnabled      bool `mapstructure:"capture_enabled" yaml:"capture_enabled"`
	DisplayIndex        int  `mapstructure:"display_index" yaml:"display_index"`
	AcquireTimeoutMs    int  `mapstructure:"acquire_timeout_ms" yaml:"acquire_timeout_ms"`
	CaptureWidth        int  `mapstructure:"capture_width" yaml:"capture_width"`
	CaptureHeight       int  `mapstructure:"capture_height" yaml:"capture_height"`
	CaptureFollowWindow bool `mapstructure:"capture_follow_window" yaml:"capture_follow_window"`

	UpdatesPerSecond int    `mapstructure:"updates_per_second" yaml:"updates_per_second"`
	FramesPerSecond  int    `mapstructure:"frames_per_second" yaml:"frames_per_second"`
	VSyncInterval    int    `mapstructure:"vsync_interval" yaml:"vsync_interval"`
	AssetDir         string `mapstructure:"asset_dir" yaml:"asset_dir"`
	DebugDevice      bool   `mapstructure:"debug_device" yaml:"debug_device"`
	ShowTriangle     bool   `mapstructure:"show_triangle" yaml:"show_triangle"`

	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat     string `mapstructure:"log_format" yaml:"log_format"`
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups"`

	StatsIntervalSeconds int `mapstructure:"stats_interval_seconds" yaml:"stats_interval_seconds"`
}

func Default() *Config {
	return &Config{
		WindowWidth:          1200,
		WindowHeight:         800,
		WindowTitle:          "deskmirror",
		CaptureEnabled:       true,
		AcquireTimeoutMs:     16,
		CaptureWidth:         640,
		CaptureHeight:        360,
		CaptureFollowWindow:  true,
		UpdatesPerSecond:     60,
		FramesPerSecond:      240,
		AssetDir:             "assets",
		LogLevel:             "info",
		LogFormat:            "text",
		LogMaxSizeMB:         50,
		LogMaxBackups:        3,
		StatsIntervalSeconds: 10,
	}
}

// keys lists every setting so that env overrides apply even when the config
// file does not mention them.
var keys = []string{
	"window_width", "window_height", "window_title",
	"capture_enabled", "display_index", "acquire_timeout_ms",
	"capture_width", "capture_height", "capture_follow_window",
	"updates_per_second", "frames_per_second", "vsync_interval",
	"asset_dir", "debug_device", "show_triangle",
	"log_level", "log_format", "log_file", "log_max_size_mb", "log_max_backups",
	"stats_interval_seconds",
}

// Load reads cfgFile, or deskmirror.yaml from the user config dir and the
// working directory when cfgFile is empty. A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("deskmirror")
		v.SetConfigType("yaml")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DESKMIRROR")
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveTo writes cfg as YAML to cfgFile, or to the user config dir when
// cfgFile is empty.
func SaveTo(cfg *Config, cfgFile string) error {
	v := viper.New()
	v.Set("window_width", cfg.WindowWidth)
	v.Set("window_height", cfg.WindowHeight)
	v.Set("window_title", cfg.WindowTitle)
	v.Set("capture_enabled", cfg.CaptureEnabled)
	v.Set("display_index", cfg.DisplayIndex)
	v.Set("acquire_timeout_ms", cfg.AcquireTimeoutMs)
	v.Set("capture_width", cfg.CaptureWidth)
	v.Set("capture_height", cfg.CaptureHeight)
	v.Set("capture_follow_window", cfg.CaptureFollowWindow)
	v.Set("updates_per_second", cfg.UpdatesPerSecond)
	v.Set("frames_per_second", cfg.FramesPerSecond)
	v.Set("vsync_interval", cfg.VSyncInterval)
	v.Set("asset_dir", cfg.AssetDir)
	v.Set("debug_device", cfg.DebugDevice)
	v.Set("show_triangle", cfg.ShowTriangle)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)
	v.Set("log_file", cfg.LogFile)
	v.Set("log_max_size_mb", cfg.LogMaxSizeMB)
	v.Set("log_max_backups", cfg.LogMaxBackups)
	v.Set("stats_interval_seconds", cfg.StatsIntervalSeconds)

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir(), "deskmirror.yaml")
	}
	if dir := filepath.Dir(cfgPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return v.WriteConfigAs(cfgPath)
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "deskmirror")
}
