package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spherical/pdf-parser/internal/domain"
)

// OCRmyPDF drives the ocrmypdf command-line tool
type OCRmyPDF struct {
	binPath  string
	skipText bool
	logger   *domain.Logger
}

// NewOCRmyPDF creates an ocrmypdf engine. If binPath is empty, "ocrmypdf" is used.
func NewOCRmyPDF(binPath string, skipText bool, logger *domain.Logger) *OCRmyPDF {
	if binPath == "" {
		binPath = "ocrmypdf"
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &OCRmyPDF{binPath: binPath, skipText: skipText, logger: logger.WithPrefix("ocrmypdf")}
}

// Name implements domain.OCREngine
func (o *OCRmyPDF) Name() string { return "ocrmypdf" }

// Args builds the command line for one OCR pass.
func (o *OCRmyPDF) Args(inputPath, outputPath string, languages []string) []string {
	args := []string{"-l", strings.Join(languages, "+")}
	if o.skipText {
		args = append(args, "--skip-text")
	}
	return append(args, "-q", inputPath, outputPath)
}

// Run writes an OCR'd copy of inputPath to outputPath. Pages that already
// carry text are passed through when skipText is set.
func (o *OCRmyPDF) Run(ctx context.Context, inputPath, outputPath string, languages []string) error {
	args := o.Args(inputPath, outputPath, languages)
	o.logger.Debug("running %s %s", o.binPath, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, o.binPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		return domain.ExtractionError(fmt.Sprintf("ocrmypdf failed for %s: %s", inputPath, msg), err)
	}

	return nil
}
