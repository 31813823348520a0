package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	GeminiName         = "gemini"
	GeminiDefaultModel = "gemini-2.0-flash"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string        // "gemini-2.0-flash" (default)
	BaseURL string        // Optional endpoint override
	Timeout time.Duration // Per-request timeout, 0 disables
	Logger  *slog.Logger
}

// GeminiClient implements Generator using the Google generative AI SDK.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGeminiClient creates a Gemini client. The credential is read once here.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = GeminiDefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     client.GenerativeModel(cfg.Model),
		modelName: cfg.Model,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}, nil
}

// Name returns the provider identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.modelName
}

// Generate sends the document and prompt as one user turn.
func (c *GeminiClient) Generate(ctx context.Context, req *Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, geminiParts(req)...)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text := geminiResponseText(resp)
	c.logger.Debug("gemini response received",
		"request_id", req.RequestID,
		"model", c.modelName,
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// geminiParts puts the document before the instruction text.
func geminiParts(req *Request) []genai.Part {
	parts := make([]genai.Part, 0, 2)
	if req.Document != nil {
		parts = append(parts, genai.Blob{
			MIMEType: req.Document.MIMEType,
			Data:     req.Document.Data,
		})
	}
	return append(parts, genai.Text(req.Prompt))
}

// geminiResponseText returns the text parts of the first candidate with
// content. Responses without text fall back to a printed rendering of the
// whole response, and to "" if printing fails.
func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		found := false
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
				found = true
			}
		}
		if found {
			return b.String()
		}
	}
	return fallbackText(resp, func(v any) string { return fmt.Sprintf("%+v", v) })
}

// fallbackText renders v, yielding "" if render panics.
func fallbackText(v any, render func(any) string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	return render(v)
}

func mapGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("Gemini error (status %d): %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("Gemini error (status %d)", apiErr.Code)
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("Gemini blocked the response: %w", err)
	}
	return err
}

var _ Generator = (*GeminiClient)(nil)
