package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/concierge/internal/extract"
	"github.com/jackzampolin/concierge/internal/schema"
)

// SheetName is the worksheet holding one row per document.
const SheetName = "Extractions"

// Status values in the workbook's Status column.
const (
	StatusOK         = "ok"
	StatusReadFailed = "read_failed"
)

// Headers returns the workbook column titles: file, status and error, then
// every text and integer field, then adults and children per passenger
// count, then service_details.
func Headers() []string {
	headers := []string{"file", "status", "error"}
	for _, f := range schema.Fields() {
		if f.Kind == schema.KindText || f.Kind == schema.KindInteger {
			headers = append(headers, f.Key)
		}
	}
	for _, pax := range schema.PaxKeys() {
		for _, sub := range schema.PriceFields {
			headers = append(headers, pax+" "+sub)
		}
	}
	return append(headers, "service_details")
}

// Row flattens one batch item into cell values aligned with Headers.
func Row(item extract.Item) []any {
	status, errText := StatusOK, ""
	switch r := item.Result.(type) {
	case extract.Failure:
		status, errText = string(r.Kind), r.Text
	case nil:
		status = StatusReadFailed
		if item.Err != nil {
			errText = item.Err.Error()
		}
	}

	var obj map[string]any
	if s, ok := item.Result.(extract.Structured); ok {
		obj, _ = s.Value.(map[string]any)
	}

	row := []any{item.Name, status, errText}
	for _, f := range schema.Fields() {
		if f.Kind == schema.KindText || f.Kind == schema.KindInteger {
			row = append(row, cellValue(obj[f.Key]))
		}
	}

	pricing, _ := obj["pricing"].(map[string]any)
	for _, pax := range schema.PaxKeys() {
		entry, _ := pricing[pax].(map[string]any)
		for _, sub := range schema.PriceFields {
			row = append(row, cellValue(entry[sub]))
		}
	}

	var details []string
	if list, ok := obj["service_details"].([]any); ok {
		for _, d := range list {
			details = append(details, scalar(d))
		}
	}
	return append(row, strings.Join(details, "; "))
}

// Workbook renders a batch as an XLSX file with a header row and one row
// per item, in batch order.
func Workbook(items []extract.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(index)

	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	headers := Headers()
	for i, h := range headers {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("xlsx header %s: %w", h, err)
		}
	}
	for r, item := range items {
		for c, v := range Row(item) {
			if err := write(c+1, r+2, v); err != nil {
				return nil, fmt.Errorf("xlsx row %d: %w", r+2, err)
			}
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(SheetName, "A", "A", 28)
	_ = f.SetColWidth(SheetName, "B", "C", 18)
	_ = f.SetColWidth(SheetName, "D", last, 20)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue keeps integers numeric and renders everything else as text.
// Missing and null values become empty cells.
func cellValue(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if x, err := v.Float64(); err == nil {
			return x
		}
		return v.String()
	case float64:
		return v
	default:
		return scalar(v)
	}
}
