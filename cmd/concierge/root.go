package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/config"
	"github.com/jackzampolin/concierge/version"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Extract airport concierge service offers from PDF documents",
	Long: `Concierge reads airport concierge service documents (meet and greet,
fast track, lounge packages) and extracts them into a fixed JSON template
with a multimodal model.

It can run as:
  - an HTTP server with a browser upload page and a JSON API (concierge serve)
  - a local command over files or remote URLs (concierge extract)

Results can be exported as a text summary, a summary PDF or an XLSX workbook.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.concierge/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		api.SetOutputFormat(outputFormat)
		if _, err := parseLevel(logLevel); err != nil {
			return err
		}
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}

// newLogger returns a text logger at the --log-level level.
func newLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(logLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads configuration from --config, the default locations and
// the environment.
func loadConfig() (*config.Manager, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return mgr, nil
}
