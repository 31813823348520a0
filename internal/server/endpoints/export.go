package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/export"
	"github.com/jackzampolin/concierge/internal/extract"
)

// Export formats accepted by POST /api/export/{format}.
const (
	FormatTXT  = "txt"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// maxExportBody bounds the JSON body of an export request.
const maxExportBody = 16 << 20

// ExportRequest carries results previously returned by /api/extract.
type ExportRequest struct {
	Items []ExtractItem `json:"items"`
}

// ExportItems converts API items back into pipeline items.
func ExportItems(items []ExtractItem) ([]extract.Item, error) {
	out := make([]extract.Item, 0, len(items))
	for i, it := range items {
		item := extract.Item{Name: it.File, RequestID: it.RequestID, Notes: it.Notes}
		switch {
		case it.Error != "":
			item.Err = errors.New(it.Error)
		case len(it.Result) == 0:
			return nil, fmt.Errorf("item %d (%s): result or error is required", i, it.File)
		default:
			r, err := extract.FromJSON(it.Result)
			if err != nil {
				return nil, fmt.Errorf("item %d (%s): %w", i, it.File, err)
			}
			item.Result = r
		}
		out = append(out, item)
	}
	return out, nil
}

// Render produces the export file for the given format and returns its
// bytes, content type and download filename. Text and PDF
// exports hold one summary per item; several items are separated by a
// header line naming the file.
func Render(format string, items []extract.Item) ([]byte, string, string, error) {
	switch format {
	case FormatTXT, FormatPDF:
		text := summaries(items)
		name := "concierge"
		if len(items) == 1 {
			name = items[0].Name
		}
		if format == FormatTXT {
			return []byte(text), "text/plain; charset=utf-8", export.TextFilename(name), nil
		}
		data, err := export.PDF(text)
		if err != nil {
			return nil, "", "", err
		}
		return data, "application/pdf", export.PDFFilename(name), nil
	case FormatXLSX:
		data, err := export.Workbook(items)
		if err != nil {
			return nil, "", "", err
		}
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "concierge_extractions.xlsx", nil
	default:
		return nil, "", "", fmt.Errorf("unknown export format %q (want txt, pdf or xlsx)", format)
	}
}

func summaries(items []extract.Item) string {
	if len(items) == 1 {
		return export.ResultSummary(items[0].Result)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, "== "+item.Name+" ==\n"+export.ResultSummary(item.Result))
	}
	return strings.Join(parts, "\n\n")
}

// ExportEndpoint handles POST /api/export/{format}.
type ExportEndpoint struct{}

func (e *ExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/export/{format}", e.handler
}

func (e *ExportEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Export extraction results
//	@Description	Renders results as a text summary, a summary PDF or an XLSX workbook
//	@Tags			extraction
//	@Accept			json
//	@Produce		octet-stream
//	@Param			format	path		string			true	"txt, pdf or xlsx"
//	@Param			request	body		ExportRequest	true	"Results to export"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/export/{format} [post]
func (e *ExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	switch format {
	case FormatTXT, FormatPDF, FormatXLSX:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format %q (want txt, pdf or xlsx)", format))
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExportBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "no items to export")
		return
	}

	items, err := ExportItems(req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, contentType, filename, err := Render(format, items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <txt|pdf|xlsx> <results.json>",
		Short: "Render saved extraction results on the server",
		Long: `Render results saved from "concierge api extract -o json" as a
text summary, a summary PDF or an XLSX workbook.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			var req ExportRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[1], err)
			}

			client := api.NewClient(getServerURL())
			data, filename, err := client.Download(cmd.Context(), "/api/export/"+args[0], req)
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: server-suggested name)")
	return cmd
}
