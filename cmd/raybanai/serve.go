package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/config"
	"github.com/raybanai/raybanai/internal/home"
	"github.com/raybanai/raybanai/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RaybanAI server",
	Long: `Start the RaybanAI HTTP server.

The server provides:
  - /api/raybanai - Image analysis (alias: /api/gpt-4-vision)
  - /api/history  - Recorded analyses
  - /health       - Basic server health check
  - /ready        - Readiness check (includes the document store when enabled)

Examples:
  raybanai serve                 # Start on default port 3103
  raybanai serve --port 3000     # Start on custom port
  raybanai serve --host 0.0.0.0  # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load configuration with hot reload
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			Home:          h,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "3103", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
