package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config selects and configures the single model used for extraction.
// It mirrors the provider section of the application config with the API
// key already resolved.
type Config struct {
	Type    string // "gemini" (default), "openai", "mock"
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPM     int // Requests per minute; positive wraps the client in RateLimited
	Logger  *slog.Logger
}

// New creates the Generator described by cfg.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var (
		gen Generator
		err error
	)
	switch cfg.Type {
	case GeminiName, "":
		gen, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Logger:  cfg.Logger,
		})
	case OpenAIName:
		gen, err = NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Logger:  cfg.Logger,
		})
	case MockClientName:
		mock := NewMockClient()
		if cfg.Model != "" {
			mock.ModelName = cfg.Model
		}
		gen = mock
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RPM > 0 {
		gen = NewRateLimited(gen, cfg.RPM)
	}

	cfg.Logger.Info("model client ready", "provider", gen.Name(), "model", gen.Model(), "rpm", cfg.RPM)
	return gen, nil
}
