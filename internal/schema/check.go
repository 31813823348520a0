package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "concierge-extraction.json"

// JSONSchema returns a JSON Schema document describing the template:
// every key required, text fields string or null (enumerated where the
// field has an Enum), integers or null, and service_details a list of strings.
func JSONSchema() json.RawMessage {
	props := make(Object, 0, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		props = append(props, Member{Key: f.Key, Value: fieldSchema(f)})
		required = append(required, f.Key)
	}
	doc := Object{
		{Key: "$schema", Value: "https://json-schema.org/draft/2020-12/schema"},
		{Key: "type", Value: "object"},
		{Key: "properties", Value: props},
		{Key: "required", Value: required},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("schema: marshal json schema: %v", err))
	}
	return raw
}

func fieldSchema(f Field) Object {
	switch f.Kind {
	case KindInteger:
		return nullableInteger()
	case KindList:
		return Object{
			{Key: "type", Value: "array"},
			{Key: "items", Value: Object{{Key: "type", Value: "string"}}},
		}
	case KindPricing:
		entryProps := make(Object, 0, len(PriceFields))
		for _, sub := range PriceFields {
			entryProps = append(entryProps, Member{Key: sub, Value: nullableInteger()})
		}
		entry := Object{
			{Key: "type", Value: []string{"object", "null"}},
			{Key: "properties", Value: entryProps},
			{Key: "required", Value: PriceFields},
		}
		paxProps := make(Object, 0, MaxPassengers)
		for _, pax := range PaxKeys() {
			paxProps = append(paxProps, Member{Key: pax, Value: entry})
		}
		return Object{
			{Key: "type", Value: "object"},
			{Key: "properties", Value: paxProps},
			{Key: "required", Value: PaxKeys()},
		}
	default:
		if len(f.Enum) > 0 {
			// "" stays valid: unknown text may be empty or null.
			allowed := make([]any, 0, len(f.Enum)+2)
			for _, v := range f.Enum {
				allowed = append(allowed, v)
			}
			allowed = append(allowed, "", nil)
			return Object{{Key: "enum", Value: allowed}}
		}
		return Object{{Key: "type", Value: []string{"string", "null"}}}
	}
}

func nullableInteger() Object {
	return Object{{Key: "type", Value: []string{"integer", "null"}}}
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(JSONSchema())); err != nil {
		return nil, fmt.Errorf("failed to load extraction schema: %w", err)
	}
	s, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile extraction schema: %w", err)
	}
	return s, nil
})

// Check reports presence and type problems of an extracted value as
// human-readable notes. It never modifies the value; a nil result means
// the value conforms. Numbers may be json.Number or float64.
func Check(value any) []string {
	s, err := compiled()
	if err != nil {
		return []string{err.Error()}
	}
	err = s.Validate(value)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	seen := make(map[string]struct{})
	var notes []string
	collectNotes(verr, seen, &notes)
	sort.Strings(notes)
	return notes
}

func collectNotes(verr *jsonschema.ValidationError, seen map[string]struct{}, notes *[]string) {
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		note := loc + ": " + verr.Message
		if _, ok := seen[note]; !ok {
			seen[note] = struct{}{}
			*notes = append(*notes, note)
		}
		return
	}
	for _, cause := range verr.Causes {
		collectNotes(cause, seen, notes)
	}
}
