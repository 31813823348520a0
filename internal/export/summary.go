// Package export renders extraction results for people: a plain text
// summary, a paginated PDF of that summary, and a spreadsheet of a batch.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/concierge/internal/extract"
)

// summaryKeys are printed first, one "key: value" line each, whether or not
// the result has them.
var summaryKeys = []string{
	"service_type", "services", "title", "airport", "max_passengers_allowed",
	"travel_type", "status", "meeting_point", "fast_track",
	"transportation_inside_airport", "assistance_with_pieces_of_luggage",
	"lounge_access", "farewell", "special_announcement",
	"duration_minutes", "fee_ooh", "late_booking_fee", "usp", "refund_policy_hours",
}

// Summary renders a parsed result as text. A value that is not a JSON
// object summarizes like an empty object.
func Summary(v any) string {
	obj, _ := v.(map[string]any)

	var lines []string
	for _, k := range summaryKeys {
		lines = append(lines, k+": "+scalar(obj[k]))
	}

	lines = append(lines, "pricing:")
	if pricing, ok := obj["pricing"].(map[string]any); ok {
		for _, pax := range sortedPaxKeys(pricing) {
			lines = append(lines, "  "+pax+": "+scalar(pricing[pax]))
		}
	}

	lines = append(lines, "service_details:")
	if details, ok := obj["service_details"].([]any); ok {
		for _, d := range details {
			lines = append(lines, "  - "+scalar(d))
		}
	}
	return strings.Join(lines, "\n")
}

// ResultSummary summarizes a pipeline Result. Failures summarize like an
// empty object.
func ResultSummary(r extract.Result) string {
	if s, ok := r.(extract.Structured); ok {
		return Summary(s.Value)
	}
	return Summary(nil)
}

// scalar renders strings bare, null as "null", and anything else as
// compact JSON.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// sortedPaxKeys orders keys by their leading passenger count. Keys without
// a numeric prefix follow, in lexical order.
func sortedPaxKeys(pricing map[string]any) []string {
	keys := make([]string, 0, len(pricing))
	for k := range pricing {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := paxCount(keys[i])
		nj, jok := paxCount(keys[j])
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func paxCount(key string) (int, bool) {
	prefix, _, _ := strings.Cut(key, "_")
	n, err := strconv.Atoi(prefix)
	return n, err == nil
}

// TextFilename is the download name of a document's summary.
func TextFilename(name string) string {
	return name + "_extracted.txt"
}

// PDFFilename is the download name of a document's summary PDF.
func PDFFilename(name string) string {
	return name + "_extracted.pdf"
}
