package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/pdf"
)

// Recognizer turns one rendered page image into text
type Recognizer interface {
	Recognize(imagePath string, languages []string) (string, error)
	Close() error
}

// Tesseract rasterises pages without a text layer, recognises them, and
// attaches the recognised text to a copy of the PDF as per-page sidecars.
type Tesseract struct {
	newConverter  func() domain.Converter
	newRecognizer func() (Recognizer, error)
	dpi           float64
	skipText      bool
	logger        *domain.Logger
}

// TesseractOption configures a Tesseract engine
type TesseractOption func(*Tesseract)

// WithConverter replaces the page rasteriser.
func WithConverter(fn func() domain.Converter) TesseractOption {
	return func(t *Tesseract) { t.newConverter = fn }
}

// WithRecognizer replaces the page recogniser.
func WithRecognizer(fn func() (Recognizer, error)) TesseractOption {
	return func(t *Tesseract) { t.newRecognizer = fn }
}

// NewTesseract creates the in-process engine. Page images go under scratchRoot.
func NewTesseract(scratchRoot string, dpi float64, skipText bool, logger *domain.Logger, opts ...TesseractOption) *Tesseract {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	t := &Tesseract{
		newConverter:  func() domain.Converter { return pdf.NewConverter(scratchRoot) },
		newRecognizer: newGosseract,
		dpi:           dpi,
		skipText:      skipText,
		logger:        logger.WithPrefix("tesseract"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements domain.OCREngine
func (t *Tesseract) Name() string { return "tesseract" }

// Run implements domain.OCREngine
func (t *Tesseract) Run(ctx context.Context, inputPath, outputPath string, languages []string) error {
	recognizer, err := t.newRecognizer()
	if err != nil {
		return err
	}
	defer recognizer.Close()

	conv := t.newConverter()
	defer func() {
		if err := conv.Cleanup(); err != nil {
			t.logger.Warn("failed to clean up page images: %v", err)
		}
	}()

	pages, err := conv.Convert(ctx, inputPath, t.dpi)
	if err != nil {
		return err
	}

	sidecarDir, err := os.MkdirTemp(filepath.Dir(outputPath), "ocr-text-*")
	if err != nil {
		return domain.IOError("Failed to create sidecar directory", err)
	}
	defer os.RemoveAll(sidecarDir)

	var sidecars []string
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.skipText && page.HasText {
			t.logger.Debug("page %d already has text, skipping", page.PageNumber)
			continue
		}

		text, err := recognizer.Recognize(page.ImagePath, languages)
		if err != nil {
			return domain.ExtractionError(fmt.Sprintf("Failed to recognise page %d", page.PageNumber), err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		sidecar := filepath.Join(sidecarDir, fmt.Sprintf("page_%03d.txt", page.PageNumber))
		if err := os.WriteFile(sidecar, []byte(text), 0o644); err != nil {
			return domain.IOError("Failed to write recognised text", err)
		}
		sidecars = append(sidecars, sidecar)
	}

	return t.writeOutput(inputPath, outputPath, sidecars)
}

// writeOutput copies the input through pdfcpu, attaching the sidecars when
// there are any.
func (t *Tesseract) writeOutput(inputPath, outputPath string, sidecars []string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = domain.ConversionError("Failed to write OCR output", fmt.Errorf("%v", rec))
		}
	}()

	conf := model.NewDefaultConfiguration()
	if len(sidecars) == 0 {
		t.logger.Debug("no pages needed recognition, writing optimised copy")
		if err := api.OptimizeFile(inputPath, outputPath, conf); err != nil {
			return domain.ConversionError("Failed to write OCR output", err)
		}
		return nil
	}

	if err := api.AddAttachmentsFile(inputPath, outputPath, sidecars, false, conf); err != nil {
		return domain.ConversionError("Failed to attach recognised text", err)
	}
	t.logger.Debug("attached recognised text for %d pages", len(sidecars))
	return nil
}
