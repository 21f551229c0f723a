// Package extractor is the library entry point for pdf-parser: it runs the
// same extraction sequence as the CLI and streams progress events.
package extractor

import (
	"context"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/export"
	"github.com/spherical/pdf-parser/internal/parser"
	"github.com/spherical/pdf-parser/internal/runner"
)

// Re-export event and result types for the public API
type (
	ProgressEvent = domain.ProgressEvent
	EventType     = domain.EventType
	Options       = domain.Options
	Element       = domain.Element
	ElementType   = domain.ElementType
	Results       = export.Results
	Config        = config.Config
	Logger        = domain.Logger
)

// Event type constants
const (
	EventStart    = domain.EventStart
	EventProgress = domain.EventProgress
	EventComplete = domain.EventComplete
	EventError    = domain.EventError
)

// Sentinel errors
var (
	ErrInputNotFound = domain.ErrInputNotFound
	ErrNoTables      = domain.ErrNoTables
)

// Client is the main entry point for the library
type Client struct {
	runner *runner.Runner
	cfg    *config.Config
	logger *domain.Logger
}

// NewClient creates a client from the default configuration, .env and
// PDF_PARSER_* environment overrides.
func NewClient() (*Client, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, domain.ConfigError("Failed to load configuration", err)
	}
	return NewClientWithConfig(cfg, nil)
}

// NewClientWithConfig creates a client with explicit configuration. A nil
// logger discards all log output.
func NewClientWithConfig(cfg *Config, logger *Logger) (*Client, error) {
	if cfg == nil {
		return nil, domain.ConfigError("config is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("invalid configuration", err)
	}
	if logger == nil {
		logger = domain.NopLogger()
	}

	return &Client{
		runner: runner.New(cfg, logger),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Process runs the requested operations on pdfPath and writes the outputs
// into outputDir. A missing input fails before any event is sent; otherwise
// the channel ends with one complete or error event and is closed.
func (c *Client) Process(ctx context.Context, pdfPath, outputDir string, opts Options) (<-chan ProgressEvent, error) {
	return c.runner.Run(ctx, runner.Request{Input: pdfPath, OutputDir: outputDir, Options: opts})
}

// ProcessSync is Process without the event stream.
func (c *Client) ProcessSync(ctx context.Context, pdfPath, outputDir string, opts Options) (Results, error) {
	return c.runner.RunSync(ctx, runner.Request{Input: pdfPath, OutputDir: outputDir, Options: opts})
}

// Elements returns the layout elements of pdfPath without writing any output.
func (c *Client) Elements(ctx context.Context, pdfPath string) ([]Element, error) {
	p, err := parser.New(pdfPath, parser.WithConfig(c.cfg), parser.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	defer p.Cleanup()

	res := p.ExtractStructuredContent(ctx)
	return res.Elements, res.Err
}

// Text returns the text layer of pdfPath without writing any output.
func (c *Client) Text(ctx context.Context, pdfPath string) (string, error) {
	p, err := parser.New(pdfPath, parser.WithConfig(c.cfg), parser.WithLogger(c.logger))
	if err != nil {
		return "", err
	}
	defer p.Cleanup()

	res := p.ExtractText(ctx)
	return res.Text, res.Err
}
