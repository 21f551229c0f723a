// Package tables finds ruled or aligned tables in positioned page text and
// writes them to a spreadsheet workbook.
package tables

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/pdf"
)

// Detector implements domain.TableDetector with a column-alignment guess:
// a run of consecutive multi-cell lines whose cells line up is a table.
type Detector struct {
	reader     domain.LayoutReader
	minRows    int
	minColumns int
	logger     *domain.Logger
}

// NewDetector creates a detector reading page layout through reader
func NewDetector(reader domain.LayoutReader, cfg config.TablesConfig, logger *domain.Logger) *Detector {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Detector{
		reader:     reader,
		minRows:    max(cfg.MinRows, 1),
		minColumns: max(cfg.MinColumns, 2),
		logger:     logger.WithPrefix("tables"),
	}
}

// Detect returns every table on every page, in page order then top to bottom.
func (d *Detector) Detect(ctx context.Context, pdfPath string) ([]domain.Table, error) {
	pages, err := d.reader.ReadPages(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	var tables []domain.Table
	for _, page := range pages {
		regions := FindRegions(pdf.GroupLines(page.Runs), d.minRows, d.minColumns)
		for i, region := range regions {
			tables = append(tables, domain.Table{
				Page:  page.Number,
				Index: i + 1,
				Rows:  region.Rows,
			})
		}
		if len(regions) > 0 {
			d.logger.Debug("page %d: %d tables", page.Number, len(regions))
		}
	}

	return tables, nil
}

// Region is a detected table and the lines it was built from
type Region struct {
	Lines []pdf.Line
	Rows  [][]string
}

// Bounds covers every line of the region.
func (r Region) Bounds() domain.Rect {
	var b domain.Rect
	for _, l := range r.Lines {
		b = b.Union(l.Bounds())
	}
	return b
}

// Text renders the rows tab-separated, one row per line.
func (r Region) Text() string {
	rows := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = strings.Join(row, "\t")
	}
	return strings.Join(rows, "\n")
}

// FindRegions scans lines (top to bottom) for blocks of aligned multi-cell
// lines with at least minRows rows and minColumns columns.
func FindRegions(lines []pdf.Line, minRows, minColumns int) []Region {
	var regions []Region
	for _, block := range candidateBlocks(lines) {
		if len(block) < minRows {
			continue
		}
		cols := columns(block)
		if len(cols) < minColumns {
			continue
		}
		regions = append(regions, Region{Lines: block, Rows: buildRows(block, cols)})
	}
	return regions
}

// candidateBlocks groups consecutive lines with two or more runs that sit
// close enough vertically to belong to one grid.
func candidateBlocks(lines []pdf.Line) [][]pdf.Line {
	var blocks [][]pdf.Line
	var cur []pdf.Line

	for _, line := range lines {
		if len(line.Runs) < 2 {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			fs := math.Max(math.Max(prev.FontSize, line.FontSize), 1)
			if prev.Y-line.Y > 2.5*fs {
				blocks = append(blocks, cur)
				cur = nil
			}
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

type span struct{ x0, x1 float64 }

// columns merges the horizontal extents of every run in the block.
func columns(block []pdf.Line) []span {
	var spans []span
	for _, line := range block {
		for _, r := range line.Runs {
			spans = append(spans, span{r.X, r.X + math.Max(r.Width, 0)})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].x0 < spans[j].x0 })

	const tol = 1.0
	var merged []span
	for _, s := range spans {
		if n := len(merged); n > 0 && s.x0 <= merged[n-1].x1+tol {
			merged[n-1].x1 = math.Max(merged[n-1].x1, s.x1)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func buildRows(block []pdf.Line, cols []span) [][]string {
	rows := make([][]string, 0, len(block))
	for _, line := range block {
		row := make([]string, len(cols))
		for _, r := range line.Runs {
			c := columnOf(cols, r.X+math.Max(r.Width, 0)/2)
			if row[c] != "" {
				row[c] += " "
			}
			row[c] += r.Text
		}
		rows = append(rows, row)
	}
	return rows
}

func columnOf(cols []span, x float64) int {
	for i, c := range cols {
		if x <= c.x1 {
			return i
		}
	}
	return len(cols) - 1
}
