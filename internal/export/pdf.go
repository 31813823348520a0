package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points. Text starts 750pt above the bottom of a Letter
// page and a new page begins once the next line would fall below 40pt.
const (
	pageHeight  = 792.0
	marginLeft  = 40.0
	firstLineY  = 750.0
	bottomLimit = 40.0
	fontSize    = 11.0
	leading     = fontSize * 1.2
)

// LinesPerPage is how many summary lines fit on one PDF page.
var LinesPerPage = linesPerPage()

func linesPerPage() int {
	n := 0
	for y := firstLineY; y >= bottomLimit; y -= leading {
		n++
	}
	return n
}

// PDF renders text as Letter pages of Helvetica 11pt, one text line per
// input line. The result always has at least one page.
func PDF(text string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", fontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		row := i % LinesPerPage
		if row == 0 {
			doc.AddPage()
		}
		if line == "" {
			continue
		}
		top := pageHeight - firstLineY + float64(row)*leading
		doc.Text(marginLeft, top, tr(line))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
