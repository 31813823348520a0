package extract

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "\n\t {\"a\":1}  \n", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence inside value", "{\"a\":\"x```y\"}", `{"a":"xy"}`},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.raw); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("fenced object", func(t *testing.T) {
		r := Normalize("```json\n{\"airport\": \"DXB\", \"duration_minutes\": 45}\n```")
		s, ok := r.(Structured)
		if !ok {
			t.Fatalf("Normalize() = %T, want Structured", r)
		}
		obj, ok := s.Value.(map[string]any)
		if !ok {
			t.Fatalf("Value = %T, want map", s.Value)
		}
		if obj["airport"] != "DXB" {
			t.Errorf("airport = %v", obj["airport"])
		}
		if obj["duration_minutes"] != json.Number("45") {
			t.Errorf("duration_minutes = %#v, want json.Number(45)", obj["duration_minutes"])
		}
	})

	t.Run("non-object json is still structured", func(t *testing.T) {
		for _, raw := range []string{`[1,2]`, `"text"`, `null`, `42`} {
			if _, ok := Normalize(raw).(Structured); !ok {
				t.Errorf("Normalize(%q) not Structured", raw)
			}
		}
	})

	t.Run("schema is not enforced", func(t *testing.T) {
		r := Normalize(`{"unexpected": true}`)
		if _, ok := r.(Structured); !ok {
			t.Fatalf("Normalize() = %T, want Structured", r)
		}
		if notes := Notes(r); len(notes) == 0 {
			t.Error("expected conformance notes for a non-conforming object")
		}
	})

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"prose", "Sorry, I can't read this file.", "Sorry, I can't read this file."},
		{"prose around json", "Here you go: {\"a\":1}", "Here you go: {\"a\":1}"},
		{"trailing data", "{\"a\":1} {\"b\":2}", "{\"a\":1} {\"b\":2}"},
		{"truncated", "```json\n{\"a\":", "{\"a\":"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(tt.raw)
			f, ok := r.(Failure)
			if !ok {
				t.Fatalf("Normalize(%q) = %T, want Failure", tt.raw, r)
			}
			if f.Kind != KindInvalidJSON {
				t.Errorf("Kind = %q, want %q", f.Kind, KindInvalidJSON)
			}
			if f.Text != tt.want {
				t.Errorf("Text = %q, want %q", f.Text, tt.want)
			}
		})
	}
}

func TestResultJSON(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   map[string]any
	}{
		{
			name:   "invalid json",
			result: Failure{Kind: KindInvalidJSON, Text: "not json"},
			want:   map[string]any{"error": "invalid_json", "raw": "not json"},
		},
		{
			name:   "model call failed",
			result: Failure{Kind: KindModelCallFailed, Text: "quota exceeded"},
			want:   map[string]any{"error": "model_call_failed", "detail": "quota exceeded"},
		},
		{
			name:   "structured",
			result: Normalize(`{"title":"VIP","pricing":{"1 pax":{"adults":100,"children":null}}}`),
			want: map[string]any{
				"title":   "VIP",
				"pricing": map[string]any{"1 pax": map[string]any{"adults": float64(100), "children": nil}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("JSON mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, roundTrip(t, Value(tt.result))); diff != "" {
				t.Errorf("Value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func roundTrip(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return out
}

func TestNotesOnFailure(t *testing.T) {
	if notes := Notes(Failure{Kind: KindInvalidJSON, Text: "x"}); notes != nil {
		t.Errorf("Notes(Failure) = %v, want nil", notes)
	}
}

func TestFromJSON(t *testing.T) {
	for _, r := range []Result{
		Failure{Kind: KindInvalidJSON, Text: "oops"},
		Failure{Kind: KindModelCallFailed, Text: "timeout"},
	} {
		data, _ := json.Marshal(r)
		got, err := FromJSON(data)
		if err != nil {
			t.Fatalf("FromJSON(%s) error = %v", data, err)
		}
		if f, ok := got.(Failure); !ok || f != r.(Failure) {
			t.Errorf("FromJSON(%s) = %#v, want %#v", data, got, r)
		}
	}

	got, err := FromJSON([]byte(`{"error":"custom","title":"x"}`))
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if _, ok := got.(Structured); !ok {
		t.Errorf("unknown error kinds should stay Structured, got %T", got)
	}

	if _, err := FromJSON([]byte(`{"a":`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
