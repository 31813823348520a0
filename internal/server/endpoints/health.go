package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/providers"
	"github.com/jackzampolin/concierge/internal/svcctx"
	"github.com/jackzampolin/concierge/version"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if svcctx.ExtractorFrom(r.Context()) == nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Model: "not_initialized"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Model: "ready"})
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (model client configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			check := func() error {
				return client.Get(cmd.Context(), "/ready", &resp)
			}

			var err error
			if wait > 0 {
				err = retry.Do(check,
					retry.Context(cmd.Context()),
					retry.Attempts(uint(wait/time.Second)+1),
					retry.Delay(time.Second),
					retry.DelayType(retry.FixedDelay),
					retry.LastErrorOnly(true),
				)
			} else {
				err = check()
			}
			if err != nil {
				var se *api.StatusError
				if errors.As(err, &se) && se.Code == http.StatusServiceUnavailable {
					return fmt.Errorf("server not ready: %w", err)
				}
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep polling until ready or this much time has passed")
	return cmd
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server     string         `json:"server"`
	Version    version.Info   `json:"version"`
	Provider   ProviderStatus `json:"provider"`
	Extraction ExtractionInfo `json:"extraction"`
}

// ProviderStatus shows the configured model client.
type ProviderStatus struct {
	Name      string                       `json:"name"`
	Model     string                       `json:"model"`
	State     string                       `json:"state"`
	RateLimit *providers.RateLimiterStatus `json:"rate_limit,omitempty"`
}

// ExtractionInfo shows the pipeline settings.
type ExtractionInfo struct {
	Backend     string `json:"backend"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server:  "running",
		Version: version.Get(),
	}

	if cfg := svcctx.ConfigFrom(r.Context()); cfg != nil {
		resp.Provider.Name = cfg.Provider.Type
		resp.Provider.Model = cfg.Provider.Model
		resp.Extraction.Backend = cfg.Extraction.Backend
		resp.Extraction.MaxUploadMB = cfg.Extraction.MaxUploadMB
	}

	resp.Provider.State = "not_initialized"
	if svc := svcctx.ExtractorFrom(r.Context()); svc != nil {
		gen := svc.Generator()
		resp.Provider.Name = gen.Name()
		resp.Provider.Model = gen.Model()
		resp.Provider.State = "ready"
		if limited, ok := gen.(*providers.RateLimited); ok {
			st := limited.Limiter().Status()
			resp.Provider.RateLimit = &st
		}
		resp.Extraction.Backend = string(svc.Backend())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse = api.ErrorResponse

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
