package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version  = "0.1.0"
	cfgFile  string
	logLevel string
	assetDir string
)

var rootCmd = &cobra.Command{
	Use:   "deskmirror",
	Short: "Desktop duplication viewer",
	Long:  `deskmirror - mirrors a display into a Direct3D 11 window behind a navigable 3D scene`,
}

var runCmd = &cobra.Command{
	Use:   "run [mesh.stl]",
	Short: "Open the viewer window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var mesh string
		if len(args) == 1 {
			mesh = args[0]
		}
		return runViewer(mesh)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deskmirror v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/deskmirror/deskmirror.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&assetDir, "assets", "", "override asset_dir")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
