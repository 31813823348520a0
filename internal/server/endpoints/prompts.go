package endpoints

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/prompts"
)

// PromptResponse represents the rendered extraction prompt.
type PromptResponse struct {
	Key       string   `json:"key"`
	Text      string   `json:"text"`
	Variables []string `json:"variables,omitempty"`
	Hash      string   `json:"hash"`
}

// DescribePrompt renders the extraction prompt for a hint.
func DescribePrompt(hint string) PromptResponse {
	text := prompts.Build(hint)
	return PromptResponse{
		Key:       prompts.ExtractionKey,
		Text:      text,
		Variables: prompts.ExtractVariables(prompts.Source()),
		Hash:      prompts.HashText(text),
	}
}

// GetPromptEndpoint handles GET /api/prompt.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompt", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Render the extraction prompt
//	@Description	Rendered prompt text with its template variables and a content hash
//	@Tags			extraction
//	@Produce		json
//	@Param			hint	query		string	false	"Optional hint appended to the prompt"
//	@Success		200		{object}	PromptResponse
//	@Router			/api/prompt [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DescribePrompt(r.URL.Query().Get("hint")))
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var hint string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the extraction prompt on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/prompt"
			if hint != "" {
				path += "?hint=" + url.QueryEscape(hint)
			}
			var resp PromptResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "", "Hint appended to the prompt")
	return cmd
}
