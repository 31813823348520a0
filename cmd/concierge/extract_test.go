package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/afs"

	"github.com/jackzampolin/concierge/internal/extract"
)

func TestNormalizeLocation(t *testing.T) {
	dir := t.TempDir()

	got, err := normalizeLocation(filepath.Join(dir, "offer.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/offer.pdf") {
		t.Errorf("normalizeLocation(abs) = %q, want file:// URL", got)
	}

	remote := "gs://bucket/offers/dxb.pdf"
	if got, _ := normalizeLocation(remote); got != remote {
		t.Errorf("normalizeLocation(%q) = %q, want unchanged", remote, got)
	}
}

func TestLocationUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dubai.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}
	location, err := normalizeLocation(path)
	if err != nil {
		t.Fatal(err)
	}

	u := &locationUpload{ctx: context.Background(), fs: afs.New(), location: location}
	if u.Name() != "dubai.pdf" {
		t.Errorf("Name() = %q, want dubai.pdf", u.Name())
	}
	rc, err := u.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 test" {
		t.Errorf("content = %q", data)
	}

	missing := &locationUpload{ctx: context.Background(), fs: afs.New(), location: location + ".missing"}
	if _, err := missing.Open(); err == nil {
		t.Error("Open() on a missing file should fail")
	}
}

func TestWriteExports(t *testing.T) {
	dir := t.TempDir()
	extractTxtDir = dir
	extractPDFDir = dir
	extractXLSX = filepath.Join(dir, "batch.xlsx")
	t.Cleanup(func() { extractTxtDir, extractPDFDir, extractXLSX = "", "", "" })

	items := []extract.Item{
		{Name: "dubai.pdf", Result: extract.Structured{Value: map[string]any{"title": "Marhaba Gold"}}},
		{Name: "broken.pdf", Err: io.ErrUnexpectedEOF},
	}
	if err := writeExports(context.Background(), afs.New(), items); err != nil {
		t.Fatalf("writeExports() error = %v", err)
	}

	text, err := os.ReadFile(filepath.Join(dir, "dubai.pdf_extracted.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), "title: Marhaba Gold") {
		t.Errorf("summary = %q", text)
	}
	for _, name := range []string{"dubai.pdf_extracted.pdf", "batch.xlsx"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.pdf_extracted.txt")); err == nil {
		t.Error("unreadable documents should not get a summary")
	}
}
