package endpoints

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackzampolin/concierge/internal/document"
	"github.com/jackzampolin/concierge/internal/extract"
)

// FormField is the multipart field carrying uploaded documents.
const FormField = "files"

// maxFilesPerRequest bounds the request body together with the per-file limit.
const maxFilesPerRequest = 20

var (
	errNoFiles  = errors.New("no files uploaded (use multipart field \"files\")")
	errTooLarge = errors.New("upload too large")
	errNotPDF   = errors.New("not a PDF")
)

// upload is one multipart file read into memory and sniffed.
type upload struct {
	name string
	data []byte
	info document.Info
	err  error
}

// status maps a rejected upload to its HTTP status.
func (u upload) status() int {
	switch {
	case errors.Is(u.err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(u.err, errNotPDF):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

// readUploads parses the multipart form and reads every file. Files that
// exceed maxBytes or are not PDFs carry an error; the caller decides
// whether that rejects the request or is shown next to the file. A
// maxBytes of 0 disables the size limit.
func readUploads(w http.ResponseWriter, r *http.Request, maxBytes int64, logger *slog.Logger) ([]upload, int, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes*maxFilesPerRequest+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: request exceeds %d bytes", errTooLarge, mbe.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[FormField]
	if len(headers) == 0 {
		return nil, http.StatusBadRequest, errNoFiles
	}
	if len(headers) > maxFilesPerRequest {
		return nil, http.StatusBadRequest, fmt.Errorf("too many files: %d (max %d)", len(headers), maxFilesPerRequest)
	}

	uploads := make([]upload, 0, len(headers))
	for _, fh := range headers {
		u := upload{name: fh.Filename}
		if maxBytes > 0 && fh.Size > maxBytes {
			u.err = fmt.Errorf("%w: %s is %d bytes (max %d)", errTooLarge, fh.Filename, fh.Size, maxBytes)
			uploads = append(uploads, u)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			u.err = fmt.Errorf("failed to open %s: %w", fh.Filename, err)
			uploads = append(uploads, u)
			continue
		}
		u.data, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			u.err = fmt.Errorf("failed to read %s: %w", fh.Filename, err)
			uploads = append(uploads, u)
			continue
		}

		u.info, err = document.Inspect(u.data)
		switch {
		case !u.info.IsPDF():
			u.err = fmt.Errorf("%w: %s is %s", errNotPDF, fh.Filename, u.info.MediaType)
		case err != nil:
			// The model may still read PDFs pdfcpu rejects.
			logger.Warn("pdf inspection failed", "file", fh.Filename, "error", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, http.StatusOK, nil
}

// firstRejection returns the first upload that carries an error.
func firstRejection(uploads []upload) (upload, bool) {
	for _, u := range uploads {
		if u.err != nil {
			return u, true
		}
	}
	return upload{}, false
}

// asExtractUpload turns an accepted upload into a pipeline upload.
func (u upload) asExtractUpload() extract.Upload {
	return extract.NewBytesUpload(u.name, document.PDFMediaType, u.data)
}
