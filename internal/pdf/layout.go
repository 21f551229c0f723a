package pdf

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/spherical/pdf-parser/internal/domain"
)

// A4 in points, used when a page carries no readable MediaBox.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// LayoutReader turns per-glyph positions into text runs using ledongthuc/pdf
type LayoutReader struct {
	columnGap float64
}

// NewLayoutReader creates a layout reader. Glyphs on one baseline separated by
// more than columnGap points start a new run.
func NewLayoutReader(columnGap float64) *LayoutReader {
	if columnGap <= 0 {
		columnGap = 8
	}
	return &LayoutReader{columnGap: columnGap}
}

// ReadPages implements domain.LayoutReader
func (l *LayoutReader) ReadPages(ctx context.Context, pdfPath string) (pages []domain.Page, err error) {
	f, r, err := lpdf.Open(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("Failed to open PDF", err)
	}
	defer f.Close()

	// ledongthuc/pdf panics on malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, domain.ExtractionError("PDF content stream is malformed", fmt.Errorf("%v", rec))
		}
	}()

	total := r.NumPage()
	pages = make([]domain.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		width, height := pageSize(p)
		pages = append(pages, domain.Page{
			Number: i,
			Width:  width,
			Height: height,
			Runs:   l.buildRuns(p.Content().Text),
		})
	}

	return pages, nil
}

func pageSize(p lpdf.Page) (float64, float64) {
	box := p.V.Key("MediaBox")
	if box.Kind() != lpdf.Array || box.Len() < 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

// buildRuns groups glyphs into baseline rows, then splits each row at wide gaps.
func (l *LayoutReader) buildRuns(glyphs []lpdf.Text) []domain.TextRun {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]lpdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]lpdf.Text
	var rowY float64
	for _, g := range sorted {
		if g.S == "" {
			continue
		}
		tol := math.Max(1, 0.3*g.FontSize)
		if len(rows) == 0 || math.Abs(g.Y-rowY) > tol {
			rows = append(rows, nil)
			rowY = g.Y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}

	var runs []domain.TextRun
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		runs = append(runs, l.splitRow(row)...)
	}
	return runs
}

// Fonts without a Widths array report zero-width glyphs that all share the
// string's origin. Those get an estimated advance and never a synthesized space.
func (l *LayoutReader) splitRow(row []lpdf.Text) []domain.TextRun {
	var runs []domain.TextRun
	var b strings.Builder
	var cur domain.TextRun
	end := 0.0
	measured := false
	origin, originChars := 0.0, 0

	flush := func() {
		text := strings.TrimSpace(b.String())
		if text != "" {
			cur.Text = text
			cur.Width = end - cur.X
			runs = append(runs, cur)
		}
		b.Reset()
	}

	for i, g := range row {
		fs := math.Max(g.FontSize, 1)
		if i == 0 {
			cur = domain.TextRun{X: g.X, Y: g.Y, FontSize: g.FontSize, Font: g.Font}
		} else {
			gap := g.X - end
			switch {
			case gap > math.Max(l.columnGap, 0.6*fs):
				flush()
				cur = domain.TextRun{X: g.X, Y: g.Y, FontSize: g.FontSize, Font: g.Font}
			case measured && gap > 0.15*fs && g.S != " " && !strings.HasSuffix(b.String(), " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		cur.FontSize = math.Max(cur.FontSize, g.FontSize)

		measured = g.W > 0
		glyphEnd := g.X + g.W
		if !measured {
			if i == 0 || g.X != origin {
				origin, originChars = g.X, 0
			}
			originChars += len([]rune(g.S))
			glyphEnd = origin + 0.5*fs*float64(originChars)
		}
		if i == 0 {
			end = glyphEnd
		} else {
			end = math.Max(end, glyphEnd)
		}
	}
	flush()
	return runs
}

// Line is a set of runs sharing one baseline, ordered left to right
type Line struct {
	Y        float64
	FontSize float64
	Runs     []domain.TextRun
}

// Text joins the runs of the line with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Runs))
	for i, r := range l.Runs {
		parts[i] = r.Text
	}
	return strings.Join(parts, " ")
}

// Bounds approximates the line box from baseline and font size.
func (l Line) Bounds() domain.Rect {
	if len(l.Runs) == 0 {
		return domain.Rect{}
	}
	x0, x1 := l.Runs[0].X, l.Runs[0].X+l.Runs[0].Width
	for _, r := range l.Runs[1:] {
		x0 = math.Min(x0, r.X)
		x1 = math.Max(x1, r.X+r.Width)
	}
	return domain.Rect{X0: x0, Y0: l.Y, X1: x1, Y1: l.Y + l.FontSize}
}

// HasFont reports whether any run of the line uses a font whose name contains sub.
func (l Line) HasFont(sub string) bool {
	sub = strings.ToLower(sub)
	for _, r := range l.Runs {
		if strings.Contains(strings.ToLower(r.Font), sub) {
			return true
		}
	}
	return false
}

// GroupLines clusters runs by baseline, top of the page first.
func GroupLines(runs []domain.TextRun) []Line {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]domain.TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	for _, r := range sorted {
		tol := math.Max(1, 0.3*r.FontSize)
		if len(lines) == 0 || math.Abs(lines[len(lines)-1].Y-r.Y) > tol {
			lines = append(lines, Line{Y: r.Y})
		}
		last := &lines[len(lines)-1]
		last.Runs = append(last.Runs, r)
		last.FontSize = math.Max(last.FontSize, r.FontSize)
	}

	for i := range lines {
		runs := lines[i].Runs
		sort.SliceStable(runs, func(a, b int) bool { return runs[a].X < runs[b].X })
	}
	return lines
}
