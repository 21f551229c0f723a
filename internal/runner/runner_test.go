package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/export"
	"github.com/spherical/pdf-parser/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOCR struct{ err error }

func (s stubOCR) Name() string { return "stub" }

func (s stubOCR) Run(ctx context.Context, in, out string, langs []string) error {
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(out, []byte("%PDF-1.4"), 0o644)
}

type stubText string

func (s stubText) ExtractText(ctx context.Context, path string) (string, error) {
	return string(s), nil
}

type stubImages struct{}

func (stubImages) ExtractImages(ctx context.Context, path string) ([]domain.EmbeddedImage, error) {
	return []domain.EmbeddedImage{{Page: 1, Index: 1, Ext: "png", Data: []byte("img")}}, nil
}

type nopOptimizer struct{}

func (nopOptimizer) Optimize(string) error { return nil }

type stubTables struct{}

func (stubTables) Detect(ctx context.Context, path string) ([]domain.Table, error) {
	return []domain.Table{{Page: 1, Index: 1, Rows: [][]string{{"a", "b"}, {"1", "2"}}}}, nil
}

type stubPartitioner struct{}

func (stubPartitioner) Partition(ctx context.Context, path string) ([]domain.Element, error) {
	return []domain.Element{{Type: domain.ElementTitle, Text: "Title", Page: 1}}, nil
}

func sourcePDF(t *testing.T) string {
	t.Helper()
	f := fpdf.New("P", "pt", "A4", "")
	f.SetFont("Helvetica", "", 12)
	f.AddPage()
	f.Text(72, 72, "Hello")
	path := filepath.Join(t.TempDir(), "input.pdf")
	require.NoError(t, f.OutputFileAndClose(path))
	return path
}

func stubRunner(t *testing.T, scratch string, ocrErr error) *Runner {
	return New(config.DefaultConfig(), domain.NopLogger(), WithParserOptions(
		parser.WithScratchRoot(scratch),
		parser.WithOCREngine(stubOCR{err: ocrErr}),
		parser.WithTextExtractor(stubText("hello world")),
		parser.WithImageExtractor(stubImages{}),
		parser.WithImageOptimizer(nopOptimizer{}),
		parser.WithTableDetector(stubTables{}),
		parser.WithPartitioner(stubPartitioner{}),
	))
}

func collect(ch <-chan domain.ProgressEvent) []domain.ProgressEvent {
	var events []domain.ProgressEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestRun_EventOrder(t *testing.T) {
	scratch := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	ch, err := stubRunner(t, scratch, nil).Run(context.Background(), Request{Input: sourcePDF(t), OutputDir: out})
	require.NoError(t, err)
	events := collect(ch)

	var types []domain.EventType
	var percents []int
	for _, ev := range events {
		types = append(types, ev.Type)
		if ev.Type == domain.EventProgress {
			percents = append(percents, ev.Percent)
		}
	}

	assert.Equal(t, domain.EventStart, types[0])
	assert.Equal(t, domain.EventComplete, types[len(types)-1])
	assert.Equal(t, []int{10, 30, 50, 70, 90, 100}, percents)

	res, ok := events[len(events)-1].Payload.(export.Results)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(out, "ocr_input.pdf"), res.OCRFile)
	assert.Equal(t, "hello world", res.Text)
	assert.Len(t, res.ImageFiles, 1)
	assert.Equal(t, filepath.Join(out, "tables_input.xlsx"), res.TablesFile)
	assert.FileExists(t, res.TablesFile)
	assert.FileExists(t, filepath.Join(out, export.StructuredFile))
	assert.Empty(t, res.Degraded)

	// scratch removed
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_SubsetOnlyProducesRequested(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	ch, err := stubRunner(t, t.TempDir(), nil).Run(context.Background(), Request{
		Input:     sourcePDF(t),
		OutputDir: out,
		Options:   domain.Options{Text: true, Tables: true},
	})
	require.NoError(t, err)

	var percents []int
	for _, ev := range collect(ch) {
		if ev.Type == domain.EventProgress {
			percents = append(percents, ev.Percent)
		}
	}
	assert.Equal(t, []int{30, 70, 100}, percents)

	assert.FileExists(t, filepath.Join(out, export.TextFile))
	assert.FileExists(t, filepath.Join(out, "tables_input.xlsx"))
	assert.NoDirExists(t, filepath.Join(out, export.ImagesDir))
	assert.NoFileExists(t, filepath.Join(out, "ocr_input.pdf"))
	assert.NoFileExists(t, filepath.Join(out, export.StructuredFile))
}

func TestRun_MissingInputFailsBeforeStart(t *testing.T) {
	ch, err := New(nil, domain.NopLogger()).Run(context.Background(), Request{
		Input:     filepath.Join(t.TempDir(), "missing.pdf"),
		OutputDir: t.TempDir(),
	})
	assert.Nil(t, ch)
	assert.True(t, errors.Is(err, domain.ErrInputNotFound))
}

func TestRun_DegradedOCRStillCompletes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	res, err := stubRunner(t, t.TempDir(), errors.New("ocrmypdf missing")).RunSync(context.Background(), Request{
		Input:     sourcePDF(t),
		OutputDir: out,
		Options:   domain.Options{OCR: true},
	})
	require.NoError(t, err)
	assert.Empty(t, res.OCRFile)
	assert.Equal(t, []string{"ocr"}, res.Degraded)
	assert.NoFileExists(t, filepath.Join(out, "ocr_input.pdf"))
}

func TestRun_KeepTemp(t *testing.T) {
	scratch := t.TempDir()

	_, err := stubRunner(t, scratch, nil).RunSync(context.Background(), Request{
		Input:     sourcePDF(t),
		OutputDir: t.TempDir(),
		Options:   domain.Options{Text: true, KeepTemp: true},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_CancelledContextEndsWithError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, err := stubRunner(t, t.TempDir(), nil).Run(ctx, Request{Input: sourcePDF(t), OutputDir: t.TempDir()})
	require.NoError(t, err)

	events := collect(ch)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventStart, events[0].Type)
	assert.Equal(t, domain.EventError, events[1].Type)
	assert.ErrorIs(t, events[1].Err, context.Canceled)
}

func TestRun_UnwritableOutputIsErrorEvent(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := stubRunner(t, t.TempDir(), nil).RunSync(context.Background(), Request{
		Input:     sourcePDF(t),
		OutputDir: filepath.Join(blocker, "out"),
	})
	require.Error(t, err)
	typ, _ := domain.TypeOf(err)
	assert.Equal(t, domain.ErrorTypeIO, typ)
}
