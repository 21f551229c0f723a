package domain

import "context"

// Converter defines the interface for rasterising PDF pages
type Converter interface {
	// Convert renders every page of the PDF into a PNG under the converter's temp dir
	Convert(ctx context.Context, pdfPath string, dpi float64) ([]PageImage, error)

	// Cleanup removes temporary files created during conversion
	Cleanup() error
}

// OCREngine produces a searchable copy of a PDF
type OCREngine interface {
	// Name identifies the engine in logs
	Name() string

	// Run writes the OCR'd copy of inputPath to outputPath
	Run(ctx context.Context, inputPath, outputPath string, languages []string) error
}

// TextExtractor reads the text layer of a PDF
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// ImageExtractor pulls embedded images out of every page, ordered by page
// then by per-page index
type ImageExtractor interface {
	ExtractImages(ctx context.Context, pdfPath string) ([]EmbeddedImage, error)
}

// ImageOptimizer rewrites an image file in place with lossy settings
type ImageOptimizer interface {
	Optimize(imagePath string) error
}

// LayoutReader returns positioned text runs per page
type LayoutReader interface {
	ReadPages(ctx context.Context, pdfPath string) ([]Page, error)
}

// TableDetector finds tables across all pages
type TableDetector interface {
	Detect(ctx context.Context, pdfPath string) ([]Table, error)
}

// WorkbookWriter saves tables as sheets of one spreadsheet
type WorkbookWriter interface {
	Write(path string, tables []Table) error
}

// Partitioner splits a document into typed layout elements
type Partitioner interface {
	Partition(ctx context.Context, pdfPath string) ([]Element, error)
}
