package endpoints

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/export"
	"github.com/jackzampolin/concierge/internal/extract"
	"github.com/jackzampolin/concierge/internal/svcctx"
	"github.com/jackzampolin/concierge/web"
)

var pages = sync.OnceValues(func() (*template.Template, error) {
	return web.Templates(nil)
})

// pageData is shared by the upload and results pages.
type pageData struct {
	Title       string
	Model       string
	MaxUploadMB int
	Items       []resultView
	BatchJSON   []ExtractItem
}

// resultView is one document on the results page.
type resultView struct {
	File         string
	Error        string
	Detail       string
	JSON         string
	Notes        []string
	HasResult    bool
	Summary      string
	RawJSON      json.RawMessage
	TextFilename string
	PDFFilename  string
}

func newResultView(item extract.Item) resultView {
	v := resultView{
		File:         item.Name,
		Notes:        item.Notes,
		TextFilename: export.TextFilename(item.Name),
		PDFFilename:  export.PDFFilename(item.Name),
	}
	switch r := item.Result.(type) {
	case nil:
		if item.Err != nil {
			v.Error = item.Err.Error()
		}
	case extract.Failure:
		switch r.Kind {
		case extract.KindModelCallFailed:
			v.Error = "Model call failed"
		default:
			v.Error = "The model did not return valid JSON"
		}
		v.Detail = r.Text
	case extract.Structured:
		pretty, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			v.Error = "failed to render result: " + err.Error()
			return v
		}
		v.JSON = string(pretty)
		v.RawJSON = json.RawMessage(pretty)
		v.HasResult = true
		v.Summary = export.ResultSummary(r)
	}
	return v
}

func basePage(r *http.Request, title string) pageData {
	data := pageData{Title: title, Model: "model not configured"}
	if cfg := svcctx.ConfigFrom(r.Context()); cfg != nil {
		data.MaxUploadMB = cfg.Extraction.MaxUploadMB
	}
	if svc := svcctx.ExtractorFrom(r.Context()); svc != nil {
		data.Model = svc.Generator().Model()
	}
	return data
}

func render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, err := pages()
	if err != nil {
		http.Error(w, "templates not available", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		svcctx.LoggerFrom(r.Context()).Error("render page failed", "page", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// IndexEndpoint serves the upload page at GET /.
type IndexEndpoint struct{}

func (e *IndexEndpoint) Route() (string, string, http.HandlerFunc) {
	// "{$}" matches only the root path.
	return "GET", "/{$}", e.handler
}

func (e *IndexEndpoint) RequiresInit() bool { return false }

func (e *IndexEndpoint) Command(_ func() string) *cobra.Command {
	return nil // Browser only
}

func (e *IndexEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "index.html", basePage(r, "Concierge"))
}

// UIExtractEndpoint handles the upload form at POST /ui/extract. Unlike
// the JSON API, rejected files are reported next to the file and the rest
// of the batch still runs.
type UIExtractEndpoint struct{}

func (e *UIExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/ui/extract", e.handler
}

func (e *UIExtractEndpoint) RequiresInit() bool { return true }

func (e *UIExtractEndpoint) Command(_ func() string) *cobra.Command {
	return nil // Browser only
}

func (e *UIExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.ExtractorFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())
	data := basePage(r, "Concierge results")

	var maxBytes int64
	if cfg := svcctx.ConfigFrom(r.Context()); cfg != nil {
		maxBytes = cfg.MaxUploadBytes()
	}

	uploads, status, err := readUploads(w, r, maxBytes, logger)
	if err != nil {
		data.Items = []resultView{{File: "upload", Error: err.Error()}}
		render(w, r, status, "results.html", data)
		return
	}

	for _, u := range uploads {
		var item extract.Item
		if u.err != nil {
			item = extract.Item{Name: u.name, Err: u.err}
		} else {
			item = svc.ExtractBatch(r.Context(), []extract.Upload{u.asExtractUpload()})[0]
		}
		data.Items = append(data.Items, newResultView(item))
		data.BatchJSON = append(data.BatchJSON, NewExtractItem(item))
	}
	render(w, r, http.StatusOK, "results.html", data)
}
