package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Concierge server",
	Long: `Start the Concierge HTTP server.

The model client is created from the provider section of the config.
Startup fails when the configured provider has no API key.

The server provides:
  - /            - Browser upload page
  - /api/extract - JSON extraction API (multipart field "files")
  - /health      - Basic server health check
  - /ready       - Readiness check (model client configured)

Examples:
  concierge serve                    # Start on the configured port (default 8080)
  concierge serve --port 3000        # Start on custom port
  concierge serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := newLogger(os.Stdout)

		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		if path := mgr.ConfigFile(); path != "" {
			logger.Info("loaded config", "path", path)
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
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
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
