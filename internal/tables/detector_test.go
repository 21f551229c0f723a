package tables

import (
	"context"
	"errors"
	"testing"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLayout struct {
	pages []domain.Page
	err   error
}

func (f fakeLayout) ReadPages(ctx context.Context, path string) ([]domain.Page, error) {
	return f.pages, f.err
}

func run(text string, x, y float64) domain.TextRun {
	return domain.TextRun{Text: text, X: x, Y: y, Width: float64(len(text)) * 5, FontSize: 10}
}

// grid lays out rows of cells at fixed column origins, 14pt apart.
func grid(top float64, xs []float64, rows ...[]string) []domain.TextRun {
	var runs []domain.TextRun
	for r, row := range rows {
		y := top - float64(r)*14
		for c, cell := range row {
			runs = append(runs, run(cell, xs[c], y))
		}
	}
	return runs
}

func TestDetector_FindsAlignedTable(t *testing.T) {
	runs := []domain.TextRun{run("Quarterly report", 72, 780)}
	runs = append(runs, grid(740, []float64{72, 200, 330},
		[]string{"Quarter", "Sales", "Growth"},
		[]string{"Q1", "120", "5.2"},
		[]string{"Q2", "150", "7.8"},
	)...)
	runs = append(runs, run("Closing paragraph of narrative text.", 72, 660))

	d := NewDetector(fakeLayout{pages: []domain.Page{{Number: 1, Runs: runs}}}, config.DefaultConfig().Tables, domain.NopLogger())
	tables, err := d.Detect(context.Background(), "doc.pdf")
	require.NoError(t, err)
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, 1, tbl.Page)
	assert.Equal(t, 1, tbl.Index)
	assert.Equal(t, [][]string{
		{"Quarter", "Sales", "Growth"},
		{"Q1", "120", "5.2"},
		{"Q2", "150", "7.8"},
	}, tbl.Rows)
}

func TestDetector_TwoTablesSeparatedByCaption(t *testing.T) {
	xs := []float64{72, 200}
	runs := grid(760, xs, []string{"a", "b"}, []string{"1", "2"})
	runs = append(runs, run("Table 2", 72, 700))
	runs = append(runs, grid(680, xs, []string{"c", "d"}, []string{"3", "4"})...)

	pages := []domain.Page{
		{Number: 1, Runs: runs},
		{Number: 2, Runs: grid(760, xs, []string{"e", "f"}, []string{"5", "6"})},
	}

	tables, err := NewDetector(fakeLayout{pages: pages}, config.DefaultConfig().Tables, domain.NopLogger()).
		Detect(context.Background(), "doc.pdf")
	require.NoError(t, err)
	require.Len(t, tables, 3)

	assert.Equal(t, [2]int{1, 1}, [2]int{tables[0].Page, tables[0].Index})
	assert.Equal(t, [2]int{1, 2}, [2]int{tables[1].Page, tables[1].Index})
	assert.Equal(t, [2]int{2, 1}, [2]int{tables[2].Page, tables[2].Index})
	assert.Equal(t, "c", tables[1].Rows[0][0])
}

func TestDetector_NoTables(t *testing.T) {
	runs := []domain.TextRun{
		run("Just a title", 72, 780),
		run("A paragraph.", 72, 760),
		// a single two-cell line is below min_rows
		run("Left", 72, 700), run("Right", 300, 700),
	}

	tables, err := NewDetector(fakeLayout{pages: []domain.Page{{Number: 1, Runs: runs}}}, config.DefaultConfig().Tables, domain.NopLogger()).
		Detect(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestDetector_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewDetector(fakeLayout{err: boom}, config.DefaultConfig().Tables, domain.NopLogger()).
		Detect(context.Background(), "doc.pdf")
	assert.ErrorIs(t, err, boom)
}

func TestFindRegions_RaggedRowsAndBounds(t *testing.T) {
	runs := grid(700, []float64{72, 200, 330},
		[]string{"Name", "Role", "Team"},
		[]string{"Ann", "Eng"},
	)

	regions := FindRegions(pdf.GroupLines(runs), 2, 2)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, []string{"Ann", "Eng", ""}, r.Rows[1])
	assert.Equal(t, "Name\tRole\tTeam\nAnn\tEng\t", r.Text())

	b := r.Bounds()
	assert.Equal(t, 72.0, b.X0)
	assert.Equal(t, 686.0, b.Y0)
	assert.Equal(t, 710.0, b.Y1)
}
