package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/breeze-rmm/deskmirror/internal/config"
)

var writePath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if writePath != "" {
			if err := config.SaveTo(cfg, writePath); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("Configuration written to %s\n", writePath)
			return nil
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	configCmd.Flags().StringVar(&writePath, "write", "", "save the effective configuration to this path")
}

// loadConfig reads the config file and environment, applies the command
// line overrides and validates the result. Clamped values are logged as
// warnings; fatal problems are returned.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if assetDir != "" {
		cfg.AssetDir = assetDir
	}

	res := cfg.ValidateTiered()
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "config warning: %v\n", w)
	}
	if res.HasFatals() {
		for _, f := range res.Fatals {
			fmt.Fprintf(os.Stderr, "config error: %v\n", f)
		}
		return nil, fmt.Errorf("invalid configuration (%d errors)", len(res.Fatals))
	}
	return cfg, nil
}
