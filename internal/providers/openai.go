package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	OpenAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI-compatible client.
type OpenAIConfig struct {
	APIKey     string
	Model      string        // "gpt-4o-mini" (default)
	BaseURL    string        // Optional, any OpenAI-compatible endpoint
	Timeout    time.Duration // HTTP timeout
	HTTPClient *http.Client  // Optional (tests)
	Logger     *slog.Logger
}

// OpenAIClient implements Generator with the chat completions API.
// Documents are sent as a file content part, images as an image part.
type OpenAIClient struct {
	model  string
	client openai.Client
	logger *slog.Logger
}

// NewOpenAIClient creates a new OpenAI client. SDK retries are disabled.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = OpenAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		logger: cfg.Logger,
	}, nil
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate sends one user message holding the document part and the prompt.
func (c *OpenAIClient) Generate(ctx context.Context, req *Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 2)
	if req.Document != nil {
		parts = append(parts, documentPart(req.Document))
	}
	parts = append(parts, openai.TextContentPart(req.Prompt))

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}

	text := openAIResponseText(resp)
	c.logger.Debug("openai response received",
		"request_id", req.RequestID,
		"model", c.model,
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func documentPart(doc *Blob) openai.ChatCompletionContentPartUnionParam {
	url := dataURL(doc)
	if strings.HasPrefix(doc.MIMEType, "image/") {
		return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: url})
	}
	return openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
		FileData: openai.String(url),
		Filename: openai.String(documentFilename(doc.MIMEType)),
	})
}

func dataURL(doc *Blob) string {
	return "data:" + doc.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(doc.Data)
}

func documentFilename(mediaType string) string {
	ext := ".bin"
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}
	return "document" + ext
}

// openAIResponseText returns the first choice's content, falling back to a
// printed rendering of the response when there is no choice.
func openAIResponseText(resp *openai.ChatCompletion) string {
	if resp == nil {
		return ""
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content
	}
	return fallbackText(resp, func(v any) string { return fmt.Sprintf("%+v", v) })
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI error (status %d)", apiErr.StatusCode)
	}
	return err
}

var _ Generator = (*OpenAIClient)(nil)
