// Package runner executes a full extraction run on a background goroutine
// and reports ordered progress events.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/export"
	"github.com/spherical/pdf-parser/internal/parser"
)

// Progress checkpoints, one per operation.
const (
	PercentOCR        = 10
	PercentText       = 30
	PercentImages     = 50
	PercentTables     = 70
	PercentStructured = 90
	PercentDone       = 100
)

// Request describes one run
type Request struct {
	Input     string
	OutputDir string
	Options   domain.Options
}

// Runner drives a parser session and the export of its results
type Runner struct {
	cfg        *config.Config
	logger     *domain.Logger
	parserOpts []parser.Option
}

// Option configures a Runner
type Option func(*Runner)

// WithParserOptions passes extra options to every parser session, after the
// runner's own configuration and logger.
func WithParserOptions(opts ...parser.Option) Option {
	return func(r *Runner) { r.parserOpts = append(r.parserOpts, opts...) }
}

// New creates a runner
func New(cfg *config.Config, logger *domain.Logger, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}
	r := &Runner{cfg: cfg, logger: logger.WithPrefix("runner")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type step struct {
	enabled bool
	percent int
	message string
	run     func(ctx context.Context, p *parser.Parser, exp *export.Exporter) (domain.ExtractionResult, error)
}

// Run opens the session synchronously, so a missing input fails here before
// any event is sent, then runs every requested operation in order on one
// goroutine. The channel ends with exactly one complete or error event and
// is then closed.
func (r *Runner) Run(ctx context.Context, req Request) (<-chan domain.ProgressEvent, error) {
	opts := req.Options.WithDefaults()
	if req.OutputDir == "" {
		req.OutputDir = r.cfg.Output.Dir
	}

	popts := append([]parser.Option{parser.WithConfig(r.cfg), parser.WithLogger(r.logger)}, r.parserOpts...)
	p, err := parser.New(req.Input, popts...)
	if err != nil {
		return nil, err
	}

	events := make(chan domain.ProgressEvent, 16)
	go r.run(ctx, p, req, opts, events)
	return events, nil
}

// RunSync runs to completion and returns the exported results.
func (r *Runner) RunSync(ctx context.Context, req Request) (export.Results, error) {
	events, err := r.Run(ctx, req)
	if err != nil {
		return export.Results{}, err
	}

	var results export.Results
	var runErr error
	for ev := range events {
		switch ev.Type {
		case domain.EventComplete:
			results, _ = ev.Payload.(export.Results)
		case domain.EventError:
			runErr = ev.Err
		}
	}
	return results, runErr
}

func (r *Runner) run(ctx context.Context, p *parser.Parser, req Request, opts domain.Options, events chan<- domain.ProgressEvent) {
	defer close(events)
	start := time.Now()

	cleanup := func() {
		if opts.KeepTemp {
			r.logger.Info("Keeping temporary files in %s", p.ScratchDir())
			return
		}
		p.Cleanup()
	}

	fail := func(err error) {
		cleanup()
		r.logger.ErrorErr(err, "run failed")
		events <- domain.ProgressEvent{
			Type:      domain.EventError,
			Message:   err.Error(),
			Err:       err,
			Timestamp: time.Now(),
		}
	}

	events <- domain.ProgressEvent{
		Type:      domain.EventStart,
		Message:   fmt.Sprintf("Processing %s", filepath.Base(p.Source())),
		Timestamp: time.Now(),
	}

	exp, err := export.New(req.OutputDir, r.logger)
	if err != nil {
		fail(err)
		return
	}

	stats := domain.ProcessingStats{}
	for _, s := range r.steps(opts) {
		if !s.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		events <- domain.ProgressEvent{
			Type:      domain.EventProgress,
			Percent:   s.percent,
			Message:   s.message,
			Timestamp: time.Now(),
		}

		stats.Requested++
		res, err := s.run(ctx, p, exp)
		if err != nil {
			fail(err)
			return
		}
		if res.Degraded() {
			stats.Degraded++
			exp.MarkDegraded(res.Kind)
		}
	}

	cleanup()

	stats.TotalTime = time.Since(start)
	r.logger.Info("Run finished in %v: %d operations, %d degraded", stats.TotalTime.Round(time.Millisecond), stats.Requested, stats.Degraded)

	events <- domain.ProgressEvent{
		Type:      domain.EventProgress,
		Percent:   PercentDone,
		Message:   "Processing complete",
		Timestamp: time.Now(),
	}
	events <- domain.ProgressEvent{
		Type:      domain.EventComplete,
		Percent:   PercentDone,
		Message:   fmt.Sprintf("Results written to %s", exp.Dir()),
		Payload:   exp.Results(),
		Timestamp: time.Now(),
	}
}

func (r *Runner) steps(opts domain.Options) []step {
	return []step{
		{
			enabled: opts.OCR,
			percent: PercentOCR,
			message: "Running OCR",
			run: func(ctx context.Context, p *parser.Parser, exp *export.Exporter) (domain.ExtractionResult, error) {
				res := p.RunOCR(ctx)
				return res, exp.OCR(p.Source(), res.OCRPath)
			},
		},
		{
			enabled: opts.Text,
			percent: PercentText,
			message: "Extracting text",
			run: func(ctx context.Context, p *parser.Parser, exp *export.Exporter) (domain.ExtractionResult, error) {
				res := p.ExtractText(ctx)
				return res, exp.Text(res.Text)
			},
		},
		{
			enabled: opts.Images,
			percent: PercentImages,
			message: "Extracting images",
			run: func(ctx context.Context, p *parser.Parser, exp *export.Exporter) (domain.ExtractionResult, error) {
				res := p.ExtractImages(ctx)
				return res, exp.Images(res.ImagesDir)
			},
		},
		{
			enabled: opts.Tables,
			percent: PercentTables,
			message: "Extracting tables",
			run: func(ctx context.Context, p *parser.Parser, exp *export.Exporter) (domain.ExtractionResult, error) {
				res := p.ExtractTables(ctx)
				return res, exp.Tables(res.WorkbookPath, p.Stem(), res.TableCount)
			},
		},
		{
			enabled: opts.Structured,
			percent: PercentStructured,
			message: "Extracting structured content",
			run: func(ctx context.Context, p *parser.Parser, exp *export.Exporter) (domain.ExtractionResult, error) {
				res := p.ExtractStructuredContent(ctx)
				if !res.Present() {
					return res, nil
				}
				return res, exp.Structured(res.Elements)
			},
		},
	}
}
