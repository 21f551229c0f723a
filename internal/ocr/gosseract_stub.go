//go:build !tesseract

package ocr

import (
	"github.com/spherical/pdf-parser/internal/domain"
)

// Built without libtesseract; rebuild with -tags tesseract to enable.
func newGosseract() (Recognizer, error) {
	return nil, domain.ConfigError("in-process OCR requires a build with -tags tesseract (libtesseract + leptonica)", nil)
}
