package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/spherical/pdf-parser/internal/domain"
)

var errBoom = errors.New("boom")

type fakeOCR struct {
	err    error
	inputs []string
}

func (f *fakeOCR) Name() string { return "fake" }

func (f *fakeOCR) Run(ctx context.Context, in, out string, langs []string) error {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("%PDF-1.4 ocr"), 0o644)
}

type fakeText struct {
	text string
	err  error
}

func (f fakeText) ExtractText(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeImages struct {
	images []domain.EmbeddedImage
	err    error
}

func (f fakeImages) ExtractImages(ctx context.Context, path string) ([]domain.EmbeddedImage, error) {
	return f.images, f.err
}

// fakeOptimizer fails for files whose name contains failOn
type fakeOptimizer struct {
	failOn string
	seen   []string
}

func (f *fakeOptimizer) Optimize(path string) error {
	f.seen = append(f.seen, filepath.Base(path))
	if f.failOn != "" && strings.Contains(path, f.failOn) {
		return errBoom
	}
	return nil
}

type fakeDetector struct {
	tables []domain.Table
	err    error
}

func (f fakeDetector) Detect(ctx context.Context, path string) ([]domain.Table, error) {
	return f.tables, f.err
}

type fakeWorkbook struct {
	err     error
	written []domain.Table
}

func (f *fakeWorkbook) Write(path string, tables []domain.Table) error {
	if f.err != nil {
		return f.err
	}
	f.written = tables
	return os.WriteFile(path, []byte("xlsx"), 0o644)
}

type fakePartitioner struct {
	elements []domain.Element
	err      error
}

func (f fakePartitioner) Partition(ctx context.Context, path string) ([]domain.Element, error) {
	return f.elements, f.err
}

func writeSource(t *testing.T) string {
	t.Helper()
	f := fpdf.New("P", "pt", "A4", "")
	f.SetFont("Helvetica", "", 12)
	f.AddPage()
	f.Text(72, 72, "Hello")
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := f.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write source PDF: %v", err)
	}
	return path
}
