package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/extract"
	"github.com/jackzampolin/concierge/internal/svcctx"
)

// ExtractItem is the outcome for one uploaded document. Result is the
// extraction result JSON (a template object, or an {"error": ...} object
// for model and parse failures). Error reports a document that could not
// be read at all.
type ExtractItem struct {
	File      string          `json:"file"`
	RequestID string          `json:"request_id,omitempty"`
	Pages     int             `json:"pages,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Notes     []string        `json:"notes,omitempty"`
}

// ExtractResponse lists results in upload order.
type ExtractResponse struct {
	Items []ExtractItem `json:"items"`
}

// NewExtractItem converts a pipeline item for the API.
func NewExtractItem(item extract.Item) ExtractItem {
	out := ExtractItem{
		File:      item.Name,
		RequestID: item.RequestID,
		Notes:     item.Notes,
	}
	if item.Err != nil {
		out.Error = item.Err.Error()
		return out
	}
	data, err := json.Marshal(item.Result)
	if err != nil {
		out.Error = fmt.Sprintf("failed to encode result: %v", err)
		return out
	}
	out.Result = data
	return out
}

// ExtractEndpoint handles POST /api/extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Extract service documents
//	@Description	Runs one model call per uploaded PDF, sequentially, in upload order
//	@Tags			extraction
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files	formData	file	true	"PDF documents"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Router			/api/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.ExtractorFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	var maxBytes int64
	if cfg := svcctx.ConfigFrom(r.Context()); cfg != nil {
		maxBytes = cfg.MaxUploadBytes()
	}

	uploads, status, err := readUploads(w, r, maxBytes, logger)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	// Reject the whole request before any model call.
	if bad, ok := firstRejection(uploads); ok {
		writeError(w, bad.status(), bad.err.Error())
		return
	}

	batch := make([]extract.Upload, len(uploads))
	for i, u := range uploads {
		batch[i] = u.asExtractUpload()
	}

	resp := ExtractResponse{Items: make([]ExtractItem, 0, len(uploads))}
	for i, item := range svc.ExtractBatch(r.Context(), batch) {
		out := NewExtractItem(item)
		out.Pages = uploads[i].info.Pages
		resp.Items = append(resp.Items, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.pdf>...",
		Short: "Extract PDF documents on the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]api.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				files = append(files, api.File{Name: filepath.Base(path), MediaType: "application/pdf", Data: data})
			}

			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			if err := client.PostMultipart(cmd.Context(), "/api/extract", FormField, files, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
