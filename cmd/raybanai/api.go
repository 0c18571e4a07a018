package main

import (
	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running RaybanAI server via HTTP.

These commands require a running server (raybanai serve).
Use --server to specify a custom server URL.

Examples:
  raybanai api health                 # Check server health
  raybanai api analyze --url <url>    # Analyze an image
  raybanai api history                # Show analysis history`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:3103", "Server URL",
	)

	for _, ep := range endpoints.All(endpoints.Config{}) {
		apiCmd.AddCommand(ep.Command(getServerURL))
	}

	rootCmd.AddCommand(apiCmd)
}
