package main

import (
	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "raybanai",
	Short: "Image analysis relay backed by a vision model API",
	Long: `RaybanAI relays image references to a vision model API and returns a
text analysis.

The pipeline includes:
  - Prompt categories with remote-then-local-then-default resolution
  - Request deduplication with a sliding time window
  - Append-only history log plus per-analysis snapshot files
  - Optional fan-out to an external document store`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.raybanai/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "raybanai home directory (default: ~/.raybanai)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
