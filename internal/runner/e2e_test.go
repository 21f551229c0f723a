package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/export"
	"github.com/spherical/pdf-parser/internal/parser"
	"github.com/spherical/pdf-parser/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestRunSync_SampleDocument runs every non-OCR operation with the real
// components against a generated Latin-only sample.
func TestRunSync_SampleDocument(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end run in short mode")
	}

	input := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, sample.Generate(input,
		sample.WithFont(filepath.Join(t.TempDir(), "no-font.ttf")),
		sample.WithLogger(domain.NopLogger())))

	scratch := t.TempDir()
	out := filepath.Join(t.TempDir(), "results")
	r := New(config.DefaultConfig(), domain.NopLogger(), WithParserOptions(parser.WithScratchRoot(scratch)))

	res, err := r.RunSync(context.Background(), Request{
		Input:     input,
		OutputDir: out,
		Options:   domain.Options{Text: true, Images: true, Tables: true, Structured: true},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Degraded)

	t.Run("text", func(t *testing.T) {
		assert.Contains(t, res.Text, sample.EnglishSentence)
		data, err := os.ReadFile(filepath.Join(out, export.TextFile))
		require.NoError(t, err)
		assert.Equal(t, res.Text, string(data))
	})

	t.Run("images", func(t *testing.T) {
		require.Len(t, res.ImageFiles, 1)
		assert.FileExists(t, res.ImageFiles[0])
		assert.Equal(t, filepath.Join(out, export.ImagesDir), filepath.Dir(res.ImageFiles[0]))
	})

	t.Run("tables", func(t *testing.T) {
		require.Equal(t, filepath.Join(out, "tables_sample.xlsx"), res.TablesFile)
		assert.Equal(t, 2, res.TableCount)

		f, err := excelize.OpenFile(res.TablesFile)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"Table_1", "Table_2"}, f.GetSheetList())

		rows, err := f.GetRows("Table_1")
		require.NoError(t, err)
		require.Len(t, rows, 6)
		assert.Equal(t, []string{"ID", "Name", "Age", "Occupation"}, rows[0])
	})

	t.Run("structured", func(t *testing.T) {
		require.NotEmpty(t, res.Elements)
		data, err := os.ReadFile(filepath.Join(out, export.StructuredFile))
		require.NoError(t, err)

		var elements []domain.Element
		require.NoError(t, json.Unmarshal(data, &elements))
		assert.Len(t, elements, len(res.Elements))

		var tables int
		for _, el := range elements {
			if el.Type == domain.ElementTable {
				tables++
			}
		}
		assert.Equal(t, 2, tables)
	})

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestRunSync_CJKSample needs a CJK TrueType font on the machine or in
// PDF_PARSER_CJK_FONT.
func TestRunSync_CJKSample(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end run in short mode")
	}
	font, ok := sample.FindCJKFont()
	if !ok {
		t.Skip("no CJK font available")
	}

	input := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, sample.Generate(input, sample.WithFont(font), sample.WithLogger(domain.NopLogger())))

	r := New(config.DefaultConfig(), domain.NopLogger(), WithParserOptions(parser.WithScratchRoot(t.TempDir())))
	res, err := r.RunSync(context.Background(), Request{
		Input:     input,
		OutputDir: filepath.Join(t.TempDir(), "results"),
		Options:   domain.Options{Text: true, Structured: true},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Text, sample.ChineseSentence)
	assert.Contains(t, res.Text, sample.EnglishSentence)

	var joined string
	for _, el := range res.Elements {
		joined += el.Text + "\n"
	}
	assert.Contains(t, joined, "表格示例")
}
