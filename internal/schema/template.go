// Package schema defines the fixed set of fields extracted from an airport
// concierge service document.
//
// The field list is the complete contract handed to the model: the prompt
// renders it verbatim, exports iterate it for column order, and the
// conformance check compiles a JSON Schema from it. Nothing in the package
// mutates it after init; every accessor returns a fresh copy.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind describes the value shape of a template field.
type Kind int

const (
	// KindText is a free text field, defaulting to "".
	KindText Kind = iota
	// KindInteger is a nullable integer field, defaulting to null.
	KindInteger
	// KindList is an ordered list of short strings, defaulting to [].
	KindList
	// KindPricing is the per passenger-count price table.
	KindPricing
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindPricing:
		return "pricing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is one top-level key of the extraction template.
type Field struct {
	Key  string
	Kind Kind
	// Enum lists the allowed values of a text field. Empty means free text.
	Enum []string
}

// MaxPassengers is the largest passenger count priced in the template.
const MaxPassengers = 10

// PriceFields are the sub-fields of every pricing entry.
var PriceFields = []string{"adults", "children"}

var fields = []Field{
	{Key: "service_type", Kind: KindText},
	{Key: "services", Kind: KindText},
	{Key: "title", Kind: KindText},
	{Key: "airport", Kind: KindText},
	{Key: "max_passengers_allowed", Kind: KindText},
	{Key: "pricing", Kind: KindPricing},
	{Key: "travel_type", Kind: KindText, Enum: []string{"arrival", "departure", "both"}},
	{Key: "status", Kind: KindText, Enum: []string{"Active", "Inactive"}},
	{Key: "meeting_point", Kind: KindText},
	{Key: "fast_track", Kind: KindText},
	{Key: "service_details", Kind: KindList},
	{Key: "transportation_inside_airport", Kind: KindText},
	{Key: "assistance_with_pieces_of_luggage", Kind: KindText},
	{Key: "lounge_access", Kind: KindText},
	{Key: "farewell", Kind: KindText},
	{Key: "special_announcement", Kind: KindText},
	{Key: "duration_minutes", Kind: KindInteger},
	{Key: "fee_ooh", Kind: KindText},
	{Key: "late_booking_fee", Kind: KindText},
	{Key: "usp", Kind: KindText},
	{Key: "refund_policy_hours", Kind: KindInteger},
}

// Fields returns the template fields in contract order.
func Fields() []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].Enum = append([]string(nil), f.Enum...)
	}
	return out
}

// Lookup returns the field with the given key.
func Lookup(key string) (Field, bool) {
	for _, f := range Fields() {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the top-level template keys in contract order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// PaxKeys returns the pricing keys "1_pax" through "10_pax".
func PaxKeys() []string {
	keys := make([]string, MaxPassengers)
	for i := range keys {
		keys[i] = PaxKey(i + 1)
	}
	return keys
}

// PaxKey returns the pricing key for n passengers.
func PaxKey(n int) string {
	return fmt.Sprintf("%d_pax", n)
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its keys in insertion order.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the members in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", m.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Template returns the template with every field at its default value.
func Template() Object {
	obj := make(Object, 0, len(fields))
	for _, f := range fields {
		obj = append(obj, Member{Key: f.Key, Value: defaultValue(f.Kind)})
	}
	return obj
}

func defaultValue(k Kind) any {
	switch k {
	case KindInteger:
		return nil
	case KindList:
		return []string{}
	case KindPricing:
		pricing := make(Object, 0, MaxPassengers)
		for _, pax := range PaxKeys() {
			entry := make(Object, 0, len(PriceFields))
			for _, sub := range PriceFields {
				entry = append(entry, Member{Key: sub})
			}
			pricing = append(pricing, Member{Key: pax, Value: entry})
		}
		return pricing
	default:
		return ""
	}
}

// JSON renders the template with two-space indentation, keys in contract order.
func JSON() string {
	raw, err := json.Marshal(Template())
	if err != nil {
		// Template holds only strings, nils and nested Objects.
		panic(fmt.Sprintf("schema: marshal template: %v", err))
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		panic(fmt.Sprintf("schema: indent template: %v", err))
	}
	return out.String()
}
