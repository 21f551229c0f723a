// Package parser holds the per-document extraction session.
//
// A Parser owns one scratch directory for its lifetime. Every operation is
// independent, may be called any number of times, and never returns an
// error once the session exists: failures come back as degraded results.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/imaging"
	"github.com/spherical/pdf-parser/internal/ocr"
	"github.com/spherical/pdf-parser/internal/partition"
	"github.com/spherical/pdf-parser/internal/pdf"
	"github.com/spherical/pdf-parser/internal/tables"
	"github.com/spherical/pdf-parser/internal/workspace"
)

// Parser is one extraction session over a single source PDF
type Parser struct {
	source      string
	scratchRoot string
	ws          *workspace.Workspace
	cfg         *config.Config
	logger      *domain.Logger

	ocr         domain.OCREngine
	text        domain.TextExtractor
	images      domain.ImageExtractor
	optimizer   domain.ImageOptimizer
	layout      domain.LayoutReader
	tables      domain.TableDetector
	workbook    domain.WorkbookWriter
	partitioner domain.Partitioner
}

// Option configures a Parser
type Option func(*Parser)

// WithConfig sets the configuration the default components are built from.
func WithConfig(cfg *config.Config) Option {
	return func(p *Parser) { p.cfg = cfg }
}

// WithLogger sets the session logger.
func WithLogger(logger *domain.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithScratchRoot places the scratch directory under dir instead of the
// system temp dir.
func WithScratchRoot(dir string) Option {
	return func(p *Parser) { p.scratchRoot = dir }
}

func WithOCREngine(e domain.OCREngine) Option {
	return func(p *Parser) { p.ocr = e }
}

func WithTextExtractor(e domain.TextExtractor) Option {
	return func(p *Parser) { p.text = e }
}

func WithImageExtractor(e domain.ImageExtractor) Option {
	return func(p *Parser) { p.images = e }
}

func WithImageOptimizer(o domain.ImageOptimizer) Option {
	return func(p *Parser) { p.optimizer = o }
}

// WithLayoutReader replaces the positioned-text reader shared by the default
// table detector and partitioner.
func WithLayoutReader(r domain.LayoutReader) Option {
	return func(p *Parser) { p.layout = r }
}

func WithTableDetector(d domain.TableDetector) Option {
	return func(p *Parser) { p.tables = d }
}

func WithWorkbookWriter(w domain.WorkbookWriter) Option {
	return func(p *Parser) { p.workbook = w }
}

func WithPartitioner(pt domain.Partitioner) Option {
	return func(p *Parser) { p.partitioner = pt }
}

// New validates path and opens a session with a fresh scratch directory.
// A missing file fails with a not_found error and allocates nothing.
func New(path string, opts ...Option) (*Parser, error) {
	p := &Parser{source: path}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg == nil {
		p.cfg = config.DefaultConfig()
	}
	if p.logger == nil {
		p.logger = domain.DefaultLogger
	}

	if err := pdf.NewValidator(p.logger).ValidatePDFPath(path); err != nil {
		return nil, err
	}

	ws, err := workspace.New(p.scratchRoot)
	if err != nil {
		return nil, domain.IOError("Failed to allocate scratch directory", err)
	}
	p.ws = ws
	p.logger = p.logger.WithPrefix("parser").With("session", ws.ID()[:8])

	p.setDefaults()
	p.logger.Debug("session opened for %s in %s", path, ws.Dir())
	return p, nil
}

func (p *Parser) setDefaults() {
	cfg := p.cfg
	if p.layout == nil {
		p.layout = pdf.NewLayoutReader(cfg.Tables.ColumnGap)
	}
	if p.ocr == nil {
		p.ocr = ocr.New(cfg.OCR, p.ws.Dir(), p.logger)
	}
	if p.text == nil {
		p.text = pdf.NewDefaultTextExtractor(p.logger)
	}
	if p.images == nil {
		p.images = pdf.NewImageExtractor(p.logger)
	}
	if p.optimizer == nil {
		p.optimizer = imaging.NewOptimizer(cfg.Images.Quality, cfg.Images.StripMetadata, p.logger)
	}
	if p.tables == nil {
		p.tables = tables.NewDetector(p.layout, cfg.Tables, p.logger)
	}
	if p.workbook == nil {
		p.workbook = tables.NewWorkbookWriter(cfg.Tables.SheetPrefix)
	}
	if p.partitioner == nil {
		p.partitioner = partition.New(p.layout, cfg.Partition, cfg.Tables, p.logger)
	}
}

// Source returns the source PDF path
func (p *Parser) Source() string { return p.source }

// ScratchDir returns the session's scratch directory
func (p *Parser) ScratchDir() string { return p.ws.Dir() }

// SessionID returns the generated session identifier
func (p *Parser) SessionID() string { return p.ws.ID() }

// Stem returns the source file name without its extension.
func (p *Parser) Stem() string {
	base := filepath.Base(p.source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *Parser) degrade(kind domain.ResultKind, message string, err error) domain.ExtractionResult {
	p.logger.WarnErr(err, "%s", message)
	return domain.ExtractionResult{Kind: kind, Err: domain.DegradedError(message, err)}
}

// recoverInto turns a panic in an operation into a degraded result. It must
// be deferred directly.
func (p *Parser) recoverInto(kind domain.ResultKind, res *domain.ExtractionResult) {
	rec := recover()
	if rec == nil {
		return
	}
	*res = p.degrade(kind, fmt.Sprintf("%s operation aborted", kind), fmt.Errorf("panic: %v", rec))
	if kind == domain.KindOCR {
		res.OCRPath = p.source
	}
}

// RunOCR writes an OCR'd copy of the source to <scratch>/ocr_<name>. On
// failure the result points at the original source.
func (p *Parser) RunOCR(ctx context.Context) (res domain.ExtractionResult) {
	defer p.recoverInto(domain.KindOCR, &res)
	output := p.ws.Path("ocr_" + filepath.Base(p.source))
	p.logger.Info("Running OCR with %s (%s)", p.ocr.Name(), p.cfg.OCR.LanguageSpec())

	if err := p.ocr.Run(ctx, p.source, output, p.cfg.OCR.Languages); err != nil {
		res = p.degrade(domain.KindOCR, "OCR failed, using the original file", err)
		res.OCRPath = p.source
		return res
	}

	p.logger.Info("OCR complete: %s", output)
	return domain.ExtractionResult{Kind: domain.KindOCR, OCRPath: output}
}

// ExtractText returns the full text layer, pages in order. Empty on failure.
func (p *Parser) ExtractText(ctx context.Context) (res domain.ExtractionResult) {
	defer p.recoverInto(domain.KindText, &res)
	p.logger.Info("Extracting text")

	text, err := p.text.ExtractText(ctx, p.source)
	if err != nil {
		return p.degrade(domain.KindText, "Text extraction failed", err)
	}

	p.logger.Info("Extracted %d characters of text", len([]rune(text)))
	return domain.ExtractionResult{Kind: domain.KindText, Text: text}
}

// ExtractImages writes every embedded image to <scratch>/images and runs the
// optimiser over each file. An optimiser failure keeps the written file.
func (p *Parser) ExtractImages(ctx context.Context) (res domain.ExtractionResult) {
	defer p.recoverInto(domain.KindImages, &res)
	p.logger.Info("Extracting images")

	found, err := p.images.ExtractImages(ctx, p.source)
	if err != nil {
		return p.degrade(domain.KindImages, "Image extraction failed", err)
	}

	dir, err := p.ws.Subdir("images")
	if err != nil {
		return p.degrade(domain.KindImages, "Image extraction failed", domain.IOError("Failed to create images directory", err))
	}

	files := make([]string, 0, len(found))
	for _, img := range found {
		path := filepath.Join(dir, img.FileName())
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			p.logger.WarnErr(err, "failed to write %s", img.FileName())
			continue
		}
		if err := p.optimizer.Optimize(path); err != nil {
			p.logger.WarnErr(err, "image optimisation failed for %s, keeping original", img.FileName())
		}
		files = append(files, path)
	}

	if len(found) > 0 && len(files) == 0 {
		return p.degrade(domain.KindImages, "Image extraction failed", domain.IOError("No image could be written", nil))
	}

	p.logger.Info("Extracted %d images to %s", len(files), dir)
	return domain.ExtractionResult{Kind: domain.KindImages, ImagesDir: dir, ImageFiles: files}
}

// ExtractTables writes detected tables to <scratch>/tables_<stem>.xlsx. No
// tables yields an absent result without a diagnostic.
func (p *Parser) ExtractTables(ctx context.Context) (res domain.ExtractionResult) {
	defer p.recoverInto(domain.KindTables, &res)
	p.logger.Info("Extracting tables")

	found, err := p.tables.Detect(ctx, p.source)
	if err != nil {
		return p.degrade(domain.KindTables, "Table extraction failed", err)
	}
	if len(found) == 0 {
		p.logger.Info("No tables found")
		return domain.ExtractionResult{Kind: domain.KindTables}
	}

	path := p.ws.Path(fmt.Sprintf("tables_%s.xlsx", p.Stem()))
	if err := p.workbook.Write(path, found); err != nil {
		if errors.Is(err, domain.ErrNoTables) {
			return domain.ExtractionResult{Kind: domain.KindTables}
		}
		return p.degrade(domain.KindTables, "Table extraction failed", err)
	}

	p.logger.Info("Extracted %d tables to %s", len(found), path)
	return domain.ExtractionResult{Kind: domain.KindTables, WorkbookPath: path, TableCount: len(found)}
}

// ExtractStructuredContent partitions the document into typed elements.
// Empty on failure.
func (p *Parser) ExtractStructuredContent(ctx context.Context) (res domain.ExtractionResult) {
	defer p.recoverInto(domain.KindStructured, &res)
	p.logger.Info("Extracting structured content")

	elements, err := p.partitioner.Partition(ctx, p.source)
	if err != nil {
		return p.degrade(domain.KindStructured, "Structured content extraction failed", err)
	}

	p.logger.Info("Extracted %d structured elements", len(elements))
	return domain.ExtractionResult{Kind: domain.KindStructured, Elements: elements}
}

// Cleanup removes the scratch directory. It never fails: errors are logged,
// and a directory that is already gone is noted at debug level.
func (p *Parser) Cleanup() {
	err := p.ws.Remove()
	switch {
	case err == nil:
		p.logger.Info("Cleaned up scratch directory %s", p.ws.Dir())
	case errors.Is(err, os.ErrNotExist):
		p.logger.Debug("scratch directory %s already removed", p.ws.Dir())
	default:
		p.logger.ErrorErr(domain.CleanupError("Failed to remove scratch directory", err), "cleanup failed")
	}
}
