package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/schema"
)

// SchemaResponse describes the extraction template.
type SchemaResponse struct {
	Template   json.RawMessage `json:"template"`
	Fields     []FieldInfo     `json:"fields"`
	JSONSchema json.RawMessage `json:"json_schema"`
}

// FieldInfo describes one template key.
type FieldInfo struct {
	Key  string   `json:"key"`
	Kind string   `json:"kind"`
	Enum []string `json:"enum,omitempty"`
}

// SchemaDescription builds the schema response. It is shared with the
// offline CLI command.
func SchemaDescription() SchemaResponse {
	resp := SchemaResponse{
		Template:   json.RawMessage(schema.JSON()),
		JSONSchema: schema.JSONSchema(),
	}
	for _, f := range schema.Fields() {
		resp.Fields = append(resp.Fields, FieldInfo{Key: f.Key, Kind: f.Kind.String(), Enum: f.Enum})
	}
	return resp
}

// SchemaEndpoint handles GET /api/schema.
type SchemaEndpoint struct{}

func (e *SchemaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/schema", e.handler
}

func (e *SchemaEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Get the extraction template
//	@Description	Template with defaults, field kinds and the conformance JSON Schema
//	@Tags			extraction
//	@Produce		json
//	@Success		200	{object}	SchemaResponse
//	@Router			/api/schema [get]
func (e *SchemaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SchemaDescription())
}

func (e *SchemaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Get the extraction template from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SchemaResponse
			if err := client.Get(cmd.Context(), "/api/schema", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
