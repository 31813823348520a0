package extract

import (
	"bytes"
	"fmt"
	"io"
)

// Upload is a named document offered for extraction. Open may only be
// called once; the pipeline reads the content fully on that call.
type Upload interface {
	Name() string
	// MediaType returns the declared media type, or "" when unknown.
	MediaType() string
	Open() (io.ReadCloser, error)
}

// Document is an upload read into memory.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
}

// Read consumes the upload once. An empty declared media type becomes
// defaultType.
func Read(u Upload, defaultType string) (Document, error) {
	rc, err := u.Open()
	if err != nil {
		return Document{}, fmt.Errorf("failed to open %s: %w", u.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", u.Name(), err)
	}

	mediaType := u.MediaType()
	if mediaType == "" {
		mediaType = defaultType
	}
	return Document{Name: u.Name(), MediaType: mediaType, Data: data}, nil
}

// BytesUpload is an Upload over in-memory content.
type BytesUpload struct {
	name      string
	mediaType string
	data      []byte
}

// NewBytesUpload creates an upload from bytes.
func NewBytesUpload(name, mediaType string, data []byte) *BytesUpload {
	return &BytesUpload{name: name, mediaType: mediaType, data: data}
}

func (u *BytesUpload) Name() string      { return u.name }
func (u *BytesUpload) MediaType() string { return u.mediaType }

func (u *BytesUpload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(u.data)), nil
}
