package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/export"
	"github.com/jackzampolin/concierge/internal/extract"
	"github.com/jackzampolin/concierge/internal/providers"
	"github.com/jackzampolin/concierge/internal/server/endpoints"
)

var (
	extractTxtDir  string
	extractPDFDir  string
	extractXLSX    string
	extractBackend string
)

var extractCmd = &cobra.Command{
	Use:   "extract <path-or-url>...",
	Short: "Extract documents locally",
	Long: `Run the extraction pipeline in this process, one model call per document,
in argument order. Locations may be local paths or URLs (file://, s3://,
gs://, https://).

Results are printed in the same shape as the server API, so the output of
"concierge extract -o json" can be passed to "concierge api export".

Examples:
  concierge extract offer.pdf
  concierge extract a.pdf b.pdf --txt-dir out --xlsx out/batch.xlsx
  concierge extract gs://bucket/offers/dxb.pdf --backend text`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(os.Stderr)

		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := *mgr.Get()
		if extractBackend != "" {
			cfg.Extraction.Backend = extractBackend
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		gen, err := providers.New(ctx, cfg.ToProviderConfig(logger))
		if err != nil {
			return fmt.Errorf("failed to create model client: %w", err)
		}
		if c, ok := gen.(io.Closer); ok {
			defer c.Close()
		}

		svc, err := extract.NewService(extract.Config{
			Generator:        gen,
			Backend:          extract.Backend(cfg.Extraction.Backend),
			DefaultMediaType: cfg.Extraction.DefaultMediaType,
			HintMaxChars:     cfg.Extraction.HintMaxChars,
			Logger:           logger,
		})
		if err != nil {
			return err
		}

		fs := afs.New()
		uploads := make([]extract.Upload, 0, len(args))
		for _, arg := range args {
			location, err := normalizeLocation(arg)
			if err != nil {
				return err
			}
			uploads = append(uploads, &locationUpload{ctx: ctx, fs: fs, location: location})
		}

		items := svc.ExtractBatch(ctx, uploads)

		if err := writeExports(ctx, fs, items); err != nil {
			return err
		}

		resp := endpoints.ExtractResponse{Items: make([]endpoints.ExtractItem, 0, len(items))}
		for _, item := range items {
			resp.Items = append(resp.Items, endpoints.NewExtractItem(item))
		}
		return api.Output(resp)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractTxtDir, "txt-dir", "", "Write a text summary per document to this directory or URL")
	extractCmd.Flags().StringVar(&extractPDFDir, "pdf-dir", "", "Write a summary PDF per document to this directory or URL")
	extractCmd.Flags().StringVar(&extractXLSX, "xlsx", "", "Write an XLSX workbook of the batch to this path or URL")
	extractCmd.Flags().StringVar(&extractBackend, "backend", "", "Override extraction.backend (vision or text)")

	rootCmd.AddCommand(extractCmd)
}

// normalizeLocation turns relative and absolute OS paths into file:// URLs.
func normalizeLocation(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		abs, err := filepath.Abs(norm)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
		norm = abs
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}

// locationUpload reads a document through afs when the pipeline opens it.
type locationUpload struct {
	ctx      context.Context
	fs       afs.Service
	location string
}

func (u *locationUpload) Name() string {
	return filepath.Base(url.Path(u.location))
}

// MediaType is unknown until the content is read; the pipeline default
// applies.
func (u *locationUpload) MediaType() string { return "" }

func (u *locationUpload) Open() (io.ReadCloser, error) {
	data, err := u.fs.DownloadWithURL(u.ctx, u.location)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// writeExports writes the requested summary files and workbook. Documents
// that could not be read get no summary files.
func writeExports(ctx context.Context, fs afs.Service, items []extract.Item) error {
	for _, item := range items {
		if item.Err != nil {
			continue
		}
		summary := export.ResultSummary(item.Result)
		if extractTxtDir != "" {
			if err := upload(ctx, fs, extractTxtDir, export.TextFilename(item.Name), []byte(summary)); err != nil {
				return err
			}
		}
		if extractPDFDir != "" {
			data, err := export.PDF(summary)
			if err != nil {
				return fmt.Errorf("failed to render pdf for %s: %w", item.Name, err)
			}
			if err := upload(ctx, fs, extractPDFDir, export.PDFFilename(item.Name), data); err != nil {
				return err
			}
		}
	}

	if extractXLSX != "" {
		data, err := export.Workbook(items)
		if err != nil {
			return err
		}
		target, err := normalizeLocation(extractXLSX)
		if err != nil {
			return err
		}
		i := strings.LastIndex(target, "/")
		dir, name := target[:i], target[i+1:]
		if err := upload(ctx, fs, dir, name, data); err != nil {
			return err
		}
	}
	return nil
}

func upload(ctx context.Context, fs afs.Service, dir, name string, data []byte) error {
	base, err := normalizeLocation(dir)
	if err != nil {
		return err
	}
	target := url.Join(base, name)
	if err := fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
