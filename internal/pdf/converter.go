package pdf

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/spherical/pdf-parser/internal/domain"
)

// Converter implements PDF page rasterisation using go-fitz
type Converter struct {
	doc     *fitz.Document
	baseDir string
	tempDir string
}

// NewConverter creates a new PDF converter instance. Page images are written
// under baseDir, or the system temp dir when baseDir is empty.
func NewConverter(baseDir string) *Converter {
	return &Converter{baseDir: baseDir}
}

// Convert renders each page of a PDF file to a PNG at the given resolution
func (c *Converter) Convert(ctx context.Context, pdfPath string, dpi float64) ([]domain.PageImage, error) {
	// Validate input
	validator := NewValidator(nil)
	if err := validator.ValidatePDFPath(pdfPath); err != nil {
		return nil, err
	}
	if err := validator.ValidateDPI(dpi); err != nil {
		return nil, err
	}

	// Open PDF document
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("Failed to open PDF", err)
	}
	if c.doc != nil {
		c.doc.Close()
	}
	c.doc = doc

	// Create temporary directory for images
	tempDir, err := os.MkdirTemp(c.baseDir, "pages-*")
	if err != nil {
		return nil, domain.IOError("Failed to create temp directory", err)
	}
	c.tempDir = tempDir

	// Get page count
	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ValidationError("PDF has no pages", nil)
	}

	images := make([]domain.PageImage, 0, pageCount)

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, dpi)
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("Failed to render page %d", pageNum+1), err)
		}

		outputPath := filepath.Join(tempDir, fmt.Sprintf("page_%03d.png", pageNum+1))
		outputFile, err := os.Create(outputPath)
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("Failed to create output file for page %d", pageNum+1), err)
		}

		err = png.Encode(outputFile, img)
		outputFile.Close()
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("Failed to encode page %d as PNG", pageNum+1), err)
		}

		// A page whose text layer is non-empty does not need OCR
		text, _ := doc.Text(pageNum)

		bounds := img.Bounds()
		images = append(images, domain.PageImage{
			PageNumber: pageNum + 1,
			ImagePath:  outputPath,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			HasText:    strings.TrimSpace(text) != "",
		})
	}

	return images, nil
}

// Cleanup removes temporary files and closes the PDF document
func (c *Converter) Cleanup() error {
	var errs []error

	// Close document
	if c.doc != nil {
		c.doc.Close()
		c.doc = nil
	}

	// Remove temporary directory
	if c.tempDir != "" {
		err := os.RemoveAll(c.tempDir)
		if err != nil {
			errs = append(errs, err)
		}
		c.tempDir = ""
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}
