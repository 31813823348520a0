package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestKeys(t *testing.T) {
	want := []string{
		"service_type", "services", "title", "airport", "max_passengers_allowed",
		"pricing", "travel_type", "status", "meeting_point", "fast_track",
		"service_details", "transportation_inside_airport",
		"assistance_with_pieces_of_luggage", "lounge_access", "farewell",
		"special_announcement", "duration_minutes", "fee_ooh", "late_booking_fee",
		"usp", "refund_policy_hours",
	}
	if diff := cmp.Diff(want, Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateDefaults(t *testing.T) {
	tmpl := Template()

	t.Run("text defaults to empty string", func(t *testing.T) {
		v, ok := tmpl.Get("airport")
		if !ok || v != "" {
			t.Errorf("airport = %#v, %v; want \"\"", v, ok)
		}
	})

	t.Run("integers default to null", func(t *testing.T) {
		for _, key := range []string{"duration_minutes", "refund_policy_hours"} {
			v, ok := tmpl.Get(key)
			if !ok || v != nil {
				t.Errorf("%s = %#v, %v; want nil", key, v, ok)
			}
		}
	})

	t.Run("service_details defaults to empty list", func(t *testing.T) {
		v, _ := tmpl.Get("service_details")
		list, ok := v.([]string)
		if !ok || len(list) != 0 {
			t.Errorf("service_details = %#v, want []string{}", v)
		}
	})

	t.Run("pricing covers 1 to 10 pax", func(t *testing.T) {
		v, _ := tmpl.Get("pricing")
		pricing, ok := v.(Object)
		if !ok {
			t.Fatalf("pricing is %T, want Object", v)
		}
		if len(pricing) != MaxPassengers {
			t.Fatalf("len(pricing) = %d, want %d", len(pricing), MaxPassengers)
		}
		if pricing[0].Key != "1_pax" || pricing[9].Key != "10_pax" {
			t.Errorf("pricing keys = %s..%s", pricing[0].Key, pricing[9].Key)
		}
		entry := pricing[4].Value.(Object)
		if diff := cmp.Diff(Object{{Key: "adults"}, {Key: "children"}}, entry); diff != "" {
			t.Errorf("pricing entry mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("callers cannot mutate the template", func(t *testing.T) {
		a := Template()
		a[0].Value = "changed"
		b := Template()
		if b[0].Value != "" {
			t.Errorf("template mutated through a previous copy: %#v", b[0].Value)
		}
		f := Fields()
		f[6].Enum[0] = "changed"
		if got, _ := Lookup("travel_type"); got.Enum[0] != "arrival" {
			t.Errorf("enum mutated through Fields(): %v", got.Enum)
		}
	})
}

func TestJSON(t *testing.T) {
	out := JSON()

	t.Run("keys appear in contract order", func(t *testing.T) {
		last := -1
		for _, key := range Keys() {
			idx := strings.Index(out, `"`+key+`":`)
			if idx < 0 {
				t.Fatalf("key %q missing from JSON()", key)
			}
			if idx < last {
				t.Errorf("key %q out of order", key)
			}
			last = idx
		}
	})

	t.Run("uses two space indentation", func(t *testing.T) {
		if !strings.HasPrefix(out, "{\n  \"service_type\": \"\",") {
			t.Errorf("unexpected prefix:\n%s", out[:60])
		}
		if !strings.Contains(out, "    \"1_pax\": {\n      \"adults\": null,\n      \"children\": null\n    },") {
			t.Error("pricing entries not rendered as nested objects")
		}
		if !strings.Contains(out, `"service_details": [],`) {
			t.Error("service_details not rendered as empty list")
		}
	})

	t.Run("is deterministic and valid JSON", func(t *testing.T) {
		if out != JSON() {
			t.Error("JSON() differs between calls")
		}
		if !json.Valid([]byte(out)) {
			t.Error("JSON() is not valid JSON")
		}
	})
}

func TestCheck(t *testing.T) {
	t.Run("template defaults conform", func(t *testing.T) {
		if notes := Check(decode(t, JSON())); len(notes) != 0 {
			t.Errorf("Check(template) = %v, want no notes", notes)
		}
	})

	t.Run("missing key is reported", func(t *testing.T) {
		v := decode(t, JSON()).(map[string]any)
		delete(v, "airport")
		notes := Check(v)
		if len(notes) == 0 || !strings.Contains(strings.Join(notes, "\n"), "airport") {
			t.Errorf("Check() = %v, want a note naming airport", notes)
		}
	})

	t.Run("wrong type is reported with its location", func(t *testing.T) {
		v := decode(t, JSON()).(map[string]any)
		v["duration_minutes"] = "ninety"
		notes := Check(v)
		if len(notes) == 0 || !strings.Contains(strings.Join(notes, "\n"), "/duration_minutes") {
			t.Errorf("Check() = %v, want a note at /duration_minutes", notes)
		}
	})

	t.Run("enum values and integers pass", func(t *testing.T) {
		v := decode(t, JSON()).(map[string]any)
		v["travel_type"] = "arrival"
		v["status"] = nil
		v["duration_minutes"] = json.Number("90")
		v["service_details"] = []any{"Meet and greet", "Fast track"}
		if notes := Check(v); len(notes) != 0 {
			t.Errorf("Check() = %v, want no notes", notes)
		}
	})

	t.Run("value outside enum is reported", func(t *testing.T) {
		v := decode(t, JSON()).(map[string]any)
		v["travel_type"] = "transit"
		if notes := Check(v); len(notes) == 0 {
			t.Error("Check() returned no notes for travel_type=transit")
		}
	})

	t.Run("non-object value is reported", func(t *testing.T) {
		if notes := Check([]any{json.Number("1")}); len(notes) == 0 {
			t.Error("Check() returned no notes for an array")
		}
	})

	t.Run("extra keys are tolerated", func(t *testing.T) {
		v := decode(t, JSON()).(map[string]any)
		v["notes"] = "extra"
		if notes := Check(v); len(notes) != 0 {
			t.Errorf("Check() = %v, want no notes", notes)
		}
	})
}
