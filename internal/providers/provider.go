// Package providers wraps the multimodal model endpoints used for extraction.
//
// Every client implements Generator: one request carrying an optional binary
// document and an instruction prompt, one raw text answer back. Clients do
// not retry and do not interpret the answer; callers own parsing.
package providers

import (
	"context"
	"errors"
)

// ErrUnknownProvider is returned by New for an unsupported provider type.
var ErrUnknownProvider = errors.New("unknown provider type")

// ErrMissingAPIKey is returned when a client is built without a credential.
var ErrMissingAPIKey = errors.New("api key is required")

// Generator sends one multimodal request to a single configured model.
type Generator interface {
	// Generate dispatches the request and returns the model's raw text.
	// Transport and provider failures are returned as errors.
	Generate(ctx context.Context, req *Request) (string, error)

	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Model returns the model identity requests are sent to.
	Model() string
}

// Blob is binary document content tagged with its media type.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Request is one extraction call. It is built per document and never reused.
type Request struct {
	// Document is the binary payload. Nil sends a text-only request.
	Document *Blob

	// Prompt is the rendered instruction text.
	Prompt string

	// RequestID correlates log lines for this call.
	RequestID string
}
