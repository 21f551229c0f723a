package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/pdf-parser/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// Validator provides input validation for PDF files
type Validator struct {
	logger *domain.Logger
}

// NewValidator creates a new validator instance
func NewValidator(logger *domain.Logger) *Validator {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Validator{logger: logger}
}

// ValidatePDFPath validates that a file path is valid and points to a readable file.
// A missing file yields a not_found error; everything else is a validation error.
func (v *Validator) ValidatePDFPath(path string) error {
	// Check if path is empty
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	// Check if file exists
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NotFoundError(fmt.Sprintf("PDF file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	// Check if it's a directory
	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	// Extension and size are advisory only
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		v.logger.Warn("file %s does not have a .pdf extension (%q)", path, ext)
	}

	const maxSize = 100 * 1024 * 1024 // 100MB
	if info.Size() > maxSize {
		v.logger.Warn("PDF file is very large (%d MB), processing may take a while", info.Size()/(1024*1024))
	}

	// Check if file is readable
	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	defer file.Close()

	header := make([]byte, 1024)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return domain.ValidationError(fmt.Sprintf("cannot read file: %s", path), err)
	}
	if !bytes.Contains(header[:n], pdfMagic) {
		v.logger.Warn("file %s has no %%PDF- header, extraction will likely degrade", path)
	}

	return nil
}

// ValidateDPI validates the rasterisation resolution
func (v *Validator) ValidateDPI(dpi float64) error {
	if dpi < 72 || dpi > 1200 {
		return domain.ValidationError(fmt.Sprintf("dpi must be between 72 and 1200, got %v", dpi), nil)
	}
	return nil
}
