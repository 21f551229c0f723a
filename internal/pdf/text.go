package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	lpdf "github.com/ledongthuc/pdf"
	"github.com/spherical/pdf-parser/internal/domain"
)

// PageSeparator is written between pages of an extracted text layer.
const PageSeparator = "\f"

// FitzTextExtractor reads the text layer through MuPDF
type FitzTextExtractor struct{}

// NewFitzTextExtractor creates a MuPDF-backed text extractor
func NewFitzTextExtractor() *FitzTextExtractor {
	return &FitzTextExtractor{}
}

// ExtractText returns the text of every page, in order, separated by PageSeparator
func (e *FitzTextExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", domain.ConversionError("Failed to open PDF", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(i)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("Failed to read text of page %d", i+1), err)
		}
		if i > 0 {
			b.WriteString(PageSeparator)
		}
		b.WriteString(text)
	}

	return b.String(), nil
}

// PlainTextExtractor reads the text layer with the pure-Go ledongthuc/pdf reader
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a pure-Go text extractor
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// ExtractText returns the text of every page, in order, separated by PageSeparator
func (e *PlainTextExtractor) ExtractText(ctx context.Context, pdfPath string) (text string, err error) {
	f, r, err := lpdf.Open(pdfPath)
	if err != nil {
		return "", domain.ConversionError("Failed to open PDF", err)
	}
	defer f.Close()

	// ledongthuc/pdf panics on malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", domain.ExtractionError("PDF content stream is malformed", fmt.Errorf("%v", rec))
		}
	}()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if i > 1 {
			b.WriteString(PageSeparator)
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", domain.ExtractionError(fmt.Sprintf("Failed to read text of page %d", i), err)
		}
		b.WriteString(pageText)
	}

	return b.String(), nil
}

// ChainTextExtractor tries each extractor in turn and returns the first
// non-empty text layer
type ChainTextExtractor struct {
	extractors []domain.TextExtractor
	logger     *domain.Logger
}

// NewChainTextExtractor builds a fallback chain
func NewChainTextExtractor(logger *domain.Logger, extractors ...domain.TextExtractor) *ChainTextExtractor {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &ChainTextExtractor{extractors: extractors, logger: logger.WithPrefix("text")}
}

// NewDefaultTextExtractor is MuPDF first, then the pure-Go reader
func NewDefaultTextExtractor(logger *domain.Logger) *ChainTextExtractor {
	return NewChainTextExtractor(logger, NewFitzTextExtractor(), NewPlainTextExtractor())
}

// ExtractText implements domain.TextExtractor
func (c *ChainTextExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	var errs []error
	for i, ex := range c.extractors {
		text, err := ex.ExtractText(ctx, pdfPath)
		if err != nil {
			c.logger.Debug("text extractor %d failed: %v", i+1, err)
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(strings.ReplaceAll(text, PageSeparator, "")) != "" {
			return text, nil
		}
	}
	if len(errs) == len(c.extractors) && len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", nil
}
