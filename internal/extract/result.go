// Package extract runs the schema-constrained extraction pipeline: build the
// request for a document, call the model once, and normalize its answer into
// a Result.
package extract

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/concierge/internal/schema"
)

// Kind discriminates extraction failures.
type Kind string

const (
	// KindModelCallFailed means the model call itself failed.
	KindModelCallFailed Kind = "model_call_failed"
	// KindInvalidJSON means the model answered with text that is not JSON.
	KindInvalidJSON Kind = "invalid_json"
)

// Result is the outcome of one extraction: exactly one of Structured or Failure.
type Result interface {
	json.Marshaler
	isResult()
}

// Structured holds the parsed model output. Numbers are json.Number.
type Structured struct {
	Value any
}

// Failure carries the failure kind and its diagnostic text: the error
// detail for model_call_failed, the cleaned model text for invalid_json.
type Failure struct {
	Kind Kind
	Text string
}

func (Structured) isResult() {}
func (Failure) isResult()    {}

// MarshalJSON renders the parsed value as-is.
func (s Structured) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// MarshalJSON renders {"error":"model_call_failed","detail":...} or
// {"error":"invalid_json","raw":...}.
func (f Failure) MarshalJSON() ([]byte, error) {
	if f.Kind == KindInvalidJSON {
		return json.Marshal(struct {
			Error Kind   `json:"error"`
			Raw   string `json:"raw"`
		}{f.Kind, f.Text})
	}
	return json.Marshal(struct {
		Error  Kind   `json:"error"`
		Detail string `json:"detail"`
	}{f.Kind, f.Text})
}

// Error makes a Failure usable where an error is expected.
func (f Failure) Error() string {
	return string(f.Kind) + ": " + f.Text
}

// Value returns the result as plain data for YAML or template rendering.
func Value(r Result) any {
	switch r := r.(type) {
	case Structured:
		return r.Value
	case Failure:
		key := "detail"
		if r.Kind == KindInvalidJSON {
			key = "raw"
		}
		return map[string]any{"error": string(r.Kind), key: r.Text}
	default:
		return nil
	}
}

// Notes returns non-blocking conformance notes for a structured result.
// Failures have no notes.
func Notes(r Result) []string {
	s, ok := r.(Structured)
	if !ok {
		return nil
	}
	return schema.Check(s.Value)
}

// FromJSON reads a Result back from its JSON form. An object whose "error"
// member names a failure kind becomes a Failure; any other JSON value is
// Structured.
func FromJSON(data []byte) (Result, error) {
	value, err := decodeStrict(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid result JSON: %w", err)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return Structured{Value: value}, nil
	}
	kind, _ := obj["error"].(string)
	switch Kind(kind) {
	case KindInvalidJSON:
		text, _ := obj["raw"].(string)
		return Failure{Kind: KindInvalidJSON, Text: text}, nil
	case KindModelCallFailed:
		text, _ := obj["detail"].(string)
		return Failure{Kind: KindModelCallFailed, Text: text}, nil
	}
	return Structured{Value: value}, nil
}
