// Package document inspects uploaded files before they are sent to a model.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFMediaType is the media type of PDF documents.
const PDFMediaType = "application/pdf"

// ErrNotPDF is returned when content is expected to be a PDF but is not.
var ErrNotPDF = errors.New("document is not a PDF")

// ErrNoText is returned when a PDF has no extractable text layer.
var ErrNoText = errors.New("document has no extractable text")

// Info describes a document's content.
type Info struct {
	MediaType string `json:"media_type"`
	Extension string `json:"extension"`
	Size      int    `json:"size"`
	Pages     int    `json:"pages,omitempty"`
}

// IsPDF reports whether the content was detected as a PDF.
func (i Info) IsPDF() bool {
	return i.MediaType == PDFMediaType
}

// DetectMediaType sniffs the media type of data, without parameters.
func DetectMediaType(data []byte) string {
	return baseType(mimetype.Detect(data).String())
}

// Inspect detects the media type of data and, for PDFs, counts pages.
// A PDF that cannot be parsed is reported as an error.
func Inspect(data []byte) (Info, error) {
	m := mimetype.Detect(data)
	info := Info{
		MediaType: baseType(m.String()),
		Extension: m.Extension(),
		Size:      len(data),
	}
	if !info.IsPDF() {
		return info, nil
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return info, fmt.Errorf("failed to read PDF: %w", err)
	}
	info.Pages = pages
	return info, nil
}

// Text extracts the plain text layer of a PDF.
func Text(data []byte) (string, error) {
	if DetectMediaType(data) != PDFMediaType {
		return "", ErrNotPDF
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Truncate shortens text to at most max runes. max <= 0 disables the limit.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}

func baseType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
