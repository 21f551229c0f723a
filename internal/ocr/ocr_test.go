package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOCRmyPDF_Args(t *testing.T) {
	tests := []struct {
		name     string
		skipText bool
		langs    []string
		want     []string
	}{
		{
			name:     "default policy",
			skipText: true,
			langs:    domain.DefaultOCRLanguages,
			want:     []string{"-l", "chi_sim+eng", "--skip-text", "-q", "in.pdf", "out.pdf"},
		},
		{
			name:  "force all pages",
			langs: []string{"eng"},
			want:  []string{"-l", "eng", "-q", "in.pdf", "out.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOCRmyPDF("", tt.skipText, domain.NopLogger())
			assert.Equal(t, tt.want, o.Args("in.pdf", "out.pdf", tt.langs))
		})
	}
}

func TestOCRmyPDF_MissingBinary(t *testing.T) {
	o := NewOCRmyPDF(filepath.Join(t.TempDir(), "no-such-ocrmypdf"), true, domain.NopLogger())
	err := o.Run(context.Background(), "in.pdf", "out.pdf", domain.DefaultOCRLanguages)

	require.Error(t, err)
	typ, ok := domain.TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeExtraction, typ)
}

func TestNew_SelectsEngine(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	cfg := config.DefaultConfig().OCR

	lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	assert.Equal(t, "ocrmypdf", New(cfg, t.TempDir(), domain.NopLogger()).Name())

	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	assert.Equal(t, "tesseract", New(cfg, t.TempDir(), domain.NopLogger()).Name())

	cfg.Engine = config.EngineTesseract
	lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	assert.Equal(t, "tesseract", New(cfg, t.TempDir(), domain.NopLogger()).Name())
}

type fakeConverter struct {
	pages   []domain.PageImage
	err     error
	cleaned bool
}

func (f *fakeConverter) Convert(ctx context.Context, path string, dpi float64) ([]domain.PageImage, error) {
	return f.pages, f.err
}

func (f *fakeConverter) Cleanup() error {
	f.cleaned = true
	return nil
}

type fakeRecognizer struct {
	text   string
	err    error
	images []string
	closed bool
}

func (f *fakeRecognizer) Recognize(imagePath string, languages []string) (string, error) {
	f.images = append(f.images, imagePath)
	return f.text, f.err
}

func (f *fakeRecognizer) Close() error {
	f.closed = true
	return nil
}

func writeInput(t *testing.T) string {
	t.Helper()
	f := fpdf.New("P", "pt", "A4", "")
	f.SetFont("Helvetica", "", 12)
	f.AddPage()
	f.Text(72, 72, "scanned")
	f.AddPage()
	path := filepath.Join(t.TempDir(), "in.pdf")
	require.NoError(t, f.OutputFileAndClose(path))
	return path
}

func TestTesseract_SkipsPagesWithText(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "ocr_in.pdf")

	conv := &fakeConverter{pages: []domain.PageImage{
		{PageNumber: 1, ImagePath: "page_001.png", HasText: true},
		{PageNumber: 2, ImagePath: "page_002.png"},
	}}
	rec := &fakeRecognizer{text: "recognised words"}

	engine := NewTesseract(t.TempDir(), 300, true, domain.NopLogger(),
		WithConverter(func() domain.Converter { return conv }),
		WithRecognizer(func() (Recognizer, error) { return rec, nil }),
	)

	require.NoError(t, engine.Run(context.Background(), input, output, domain.DefaultOCRLanguages))

	assert.Equal(t, []string{"page_002.png"}, rec.images)
	assert.True(t, rec.closed)
	assert.True(t, conv.cleaned)
	assert.FileExists(t, output)

	// sidecar directory is removed after the pass
	entries, err := os.ReadDir(filepath.Dir(output))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTesseract_NothingToRecognise(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "ocr_in.pdf")

	conv := &fakeConverter{pages: []domain.PageImage{{PageNumber: 1, HasText: true}}}
	rec := &fakeRecognizer{}

	engine := NewTesseract(t.TempDir(), 300, true, domain.NopLogger(),
		WithConverter(func() domain.Converter { return conv }),
		WithRecognizer(func() (Recognizer, error) { return rec, nil }),
	)

	require.NoError(t, engine.Run(context.Background(), input, output, domain.DefaultOCRLanguages))
	assert.Empty(t, rec.images)
	assert.FileExists(t, output)
}

func TestTesseract_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		conv *fakeConverter
		rec  func() (Recognizer, error)
	}{
		{
			name: "recognizer unavailable",
			conv: &fakeConverter{},
			rec:  func() (Recognizer, error) { return nil, boom },
		},
		{
			name: "rasterise fails",
			conv: &fakeConverter{err: boom},
			rec:  func() (Recognizer, error) { return &fakeRecognizer{}, nil },
		},
		{
			name: "recognise fails",
			conv: &fakeConverter{pages: []domain.PageImage{{PageNumber: 1}}},
			rec:  func() (Recognizer, error) { return &fakeRecognizer{err: boom}, nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "out.pdf")
			engine := NewTesseract(t.TempDir(), 300, true, domain.NopLogger(),
				WithConverter(func() domain.Converter { return tt.conv }),
				WithRecognizer(tt.rec),
			)

			err := engine.Run(context.Background(), "in.pdf", output, domain.DefaultOCRLanguages)
			assert.ErrorIs(t, err, boom)
			assert.NoFileExists(t, output)
		})
	}
}
