package prompts

import (
	_ "embed"
	"strconv"
	"strings"
	"text/template"

	"github.com/jackzampolin/concierge/internal/schema"
)

//go:embed extraction.tmpl
var extractionSource string

// ExtractionKey identifies the extraction prompt in API responses and logs.
const ExtractionKey = "extraction.system"

var extractionTemplate = template.Must(template.New(ExtractionKey).Funcs(template.FuncMap{
	"join":  joinNames,
	"quote": quoteValues,
}).Parse(extractionSource))

type extractionData struct {
	Schema        string
	PriceFields   []string
	IntegerFields []string
	ListFields    []string
	EnumFields    []schema.Field
	Hint          string
}

// Build renders the extraction prompt. The output depends only on the
// template and hint, so equal hints always produce byte-identical prompts.
// A non-empty hint is appended after the rules.
func Build(hint string) string {
	data := extractionData{
		Schema:      schema.JSON(),
		PriceFields: schema.PriceFields,
		Hint:        strings.TrimSpace(hint),
	}
	for _, f := range schema.Fields() {
		switch {
		case f.Kind == schema.KindInteger:
			data.IntegerFields = append(data.IntegerFields, f.Key)
		case f.Kind == schema.KindList:
			data.ListFields = append(data.ListFields, f.Key)
		case len(f.Enum) > 0:
			data.EnumFields = append(data.EnumFields, f)
		}
	}

	var b strings.Builder
	if err := extractionTemplate.Execute(&b, data); err != nil {
		// Data is fully static apart from the hint string.
		panic("prompts: render extraction prompt: " + err.Error())
	}
	return b.String()
}

// Default returns the extraction prompt without a hint.
func Default() string {
	return Build("")
}

// Source returns the unrendered extraction template.
func Source() string {
	return extractionSource
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func quoteValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}
