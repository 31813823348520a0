package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/concierge/internal/document"
	"github.com/jackzampolin/concierge/internal/prompts"
	"github.com/jackzampolin/concierge/internal/providers"
)

// Backend selects how a document reaches the model.
type Backend string

const (
	// BackendVision sends the document bytes as a binary part.
	BackendVision Backend = "vision"
	// BackendText parses the PDF text locally and sends it as the prompt hint.
	BackendText Backend = "text"
)

// ParseBackend validates a backend name. "" selects BackendVision.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendVision, "":
		return BackendVision, nil
	case BackendText:
		return BackendText, nil
	default:
		return "", fmt.Errorf("unknown extraction backend %q (want vision or text)", s)
	}
}

// Config holds the pipeline configuration. It is read-only once the
// Service is built.
type Config struct {
	// Generator is the model client. Required.
	Generator providers.Generator
	// Backend defaults to BackendVision.
	Backend Backend
	// DefaultMediaType applies to uploads without a declared type.
	DefaultMediaType string
	// HintMaxChars caps the document text used as a hint by the text backend.
	HintMaxChars int
	// TextExtractor reads a document's text for the text backend.
	TextExtractor func([]byte) (string, error)
	Logger        *slog.Logger
}

// Service runs extractions. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	gen          providers.Generator
	backend      Backend
	mediaType    string
	hintMaxChars int
	textOf       func([]byte) (string, error)
	prompt       string
	logger       *slog.Logger
}

// Item is the outcome of one document in a batch. Err is set when the
// document could not be read or prepared; Result is nil in that case.
type Item struct {
	Name      string
	RequestID string
	Result    Result
	Notes     []string
	Err       error
}

// NewService creates a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Generator == nil {
		return nil, errors.New("extract: generator is required")
	}
	backend, err := ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}
	if cfg.DefaultMediaType == "" {
		cfg.DefaultMediaType = document.PDFMediaType
	}
	if cfg.TextExtractor == nil {
		cfg.TextExtractor = document.Text
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		gen:          cfg.Generator,
		backend:      backend,
		mediaType:    cfg.DefaultMediaType,
		hintMaxChars: cfg.HintMaxChars,
		textOf:       cfg.TextExtractor,
		prompt:       prompts.Default(),
		logger:       cfg.Logger,
	}, nil
}

// Backend returns the configured backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// Generator returns the model client.
func (s *Service) Generator() providers.Generator {
	return s.gen
}

// Prepare builds the model request for a document. The vision backend
// attaches the bytes; the text backend sends only the prompt with the
// document text appended as a hint. An error means the document cannot
// be sent at all.
func (s *Service) Prepare(doc Document) (*providers.Request, error) {
	req := &providers.Request{RequestID: uuid.NewString()}

	switch s.backend {
	case BackendText:
		text, err := s.textOf(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", doc.Name, err)
		}
		req.Prompt = prompts.Build(document.Truncate(text, s.hintMaxChars))
	default:
		mediaType := doc.MediaType
		if mediaType == "" {
			mediaType = s.mediaType
		}
		req.Document = &providers.Blob{MIMEType: mediaType, Data: doc.Data}
		req.Prompt = s.prompt
	}
	return req, nil
}

// Run performs the single model call and normalizes the answer. It never
// returns an error: provider failures become a model_call_failed Failure.
func (s *Service) Run(ctx context.Context, req *providers.Request) Result {
	raw, err := s.gen.Generate(ctx, req)
	if err != nil {
		detail := err.Error()
		if detail == "" {
			detail = fmt.Sprintf("%T", err)
		}
		return Failure{Kind: KindModelCallFailed, Text: detail}
	}
	return Normalize(raw)
}

// Extract prepares and runs one in-memory document.
func (s *Service) Extract(ctx context.Context, doc Document) (Result, string, error) {
	req, err := s.Prepare(doc)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	result := s.Run(ctx, req)

	attrs := []any{
		"file", doc.Name,
		"request_id", req.RequestID,
		"backend", string(s.backend),
		"bytes", len(doc.Data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if f, ok := result.(Failure); ok {
		s.logger.Warn("extraction failed", append(attrs, "kind", string(f.Kind), "text", truncateLog(f.Text))...)
	} else {
		s.logger.Info("extraction complete", attrs...)
	}
	return result, req.RequestID, nil
}

// ExtractUpload reads the upload once and extracts it. The error reports
// read or parse failures only; model and JSON failures are in the Result.
func (s *Service) ExtractUpload(ctx context.Context, u Upload) (Result, string, error) {
	doc, err := Read(u, s.mediaType)
	if err != nil {
		return nil, "", err
	}
	return s.Extract(ctx, doc)
}

// ExtractBatch processes uploads one at a time in order. A failed document
// is reported in its Item and never stops the rest of the batch.
func (s *Service) ExtractBatch(ctx context.Context, uploads []Upload) []Item {
	items := make([]Item, 0, len(uploads))
	for _, u := range uploads {
		result, requestID, err := s.ExtractUpload(ctx, u)
		item := Item{Name: u.Name(), RequestID: requestID, Result: result, Err: err}
		if err != nil {
			s.logger.Warn("document skipped", "file", u.Name(), "error", err)
		} else {
			item.Notes = Notes(result)
		}
		items = append(items, item)
	}
	return items
}

func truncateLog(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
