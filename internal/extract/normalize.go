package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var errTrailingData = errors.New("unexpected data after JSON value")

// Clean trims the raw model text and removes every code fence marker.
// Fence markers are stripped wherever they occur, including inside values.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Normalize turns raw model text into a Result. Text that parses as exactly
// one JSON value becomes Structured without any schema validation; anything
// else becomes an invalid_json Failure carrying the cleaned text.
func Normalize(raw string) Result {
	cleaned := Clean(raw)
	value, err := decodeStrict(cleaned)
	if err != nil {
		return Failure{Kind: KindInvalidJSON, Text: cleaned}
	}
	return Structured{Value: value}
}

func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}
