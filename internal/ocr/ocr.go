// Package ocr provides the engines that write an OCR'd copy of a PDF.
//
// The default engine shells out to ocrmypdf. When the binary cannot be found
// the in-process tesseract engine is used instead, which needs a build with
// -tags tesseract to actually recognise pages.
package ocr

import (
	"os/exec"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
)

var lookPath = exec.LookPath

// New selects an engine from configuration. scratchRoot is where the
// tesseract engine renders page images.
func New(cfg config.OCRConfig, scratchRoot string, logger *domain.Logger) domain.OCREngine {
	if logger == nil {
		logger = domain.DefaultLogger
	}

	if cfg.Engine == config.EngineOCRmyPDF {
		if path, err := lookPath(cfg.OCRmyPDFPath); err == nil {
			return NewOCRmyPDF(path, cfg.SkipText, logger)
		}
		logger.Warn("%s not found on PATH, falling back to the tesseract engine", cfg.OCRmyPDFPath)
	}

	return NewTesseract(scratchRoot, cfg.DPI, cfg.SkipText, logger)
}
