package providers

import (
	"context"
	"os"
)

// TestConfig holds provider credentials loaded from environment variables.
// Live tests use it to skip when no key is configured.
type TestConfig struct {
	GoogleAPIKey string
}

// LoadTestConfig loads provider API keys from environment variables.
func LoadTestConfig() TestConfig {
	google := os.Getenv("GOOGLE_API_KEY")
	if google == "" {
		google = os.Getenv("GOOGLE_API")
	}
	return TestConfig{GoogleAPIKey: google}
}

// HasGemini returns true if a Google API key is configured.
func (c TestConfig) HasGemini() bool {
	return c.GoogleAPIKey != ""
}

// NewGeminiClient creates a Gemini client from test config.
func (c TestConfig) NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	return NewGeminiClient(ctx, GeminiConfig{APIKey: c.GoogleAPIKey})
}
