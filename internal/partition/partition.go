// Package partition splits a document into typed layout elements using
// font-size and position heuristics over the positioned text runs.
package partition

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/pdf"
	"github.com/spherical/pdf-parser/internal/tables"
)

var listPrefix = regexp.MustCompile(`^([•·▪●◦‣\-\*–]|\(?\d{1,3}[\.\)、]|\(?[a-zA-Z][\.\)])\s*\S`)

const sentenceEnd = ".!?。！？;；:："

// Partitioner implements domain.Partitioner
type Partitioner struct {
	reader     domain.LayoutReader
	titleRatio float64
	marginBand float64
	minRows    int
	minColumns int
	logger     *domain.Logger
}

// New creates a partitioner reading page layout through reader
func New(reader domain.LayoutReader, cfg config.PartitionConfig, tablesCfg config.TablesConfig, logger *domain.Logger) *Partitioner {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Partitioner{
		reader:     reader,
		titleRatio: cfg.TitleRatio,
		marginBand: cfg.MarginBand,
		minRows:    max(tablesCfg.MinRows, 1),
		minColumns: max(tablesCfg.MinColumns, 2),
		logger:     logger.WithPrefix("partition"),
	}
}

// Partition returns the document's elements in reading order: page by page,
// top to bottom.
func (p *Partitioner) Partition(ctx context.Context, pdfPath string) ([]domain.Element, error) {
	pages, err := p.reader.ReadPages(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	pageLines := make([][]pdf.Line, len(pages))
	var sizes []float64
	for i, page := range pages {
		pageLines[i] = pdf.GroupLines(page.Runs)
		for _, l := range pageLines[i] {
			sizes = append(sizes, l.FontSize)
		}
	}
	if len(sizes) == 0 {
		return nil, nil
	}
	body := median(sizes)
	p.logger.Debug("body font size %.1f over %d lines", body, len(sizes))

	var elements []domain.Element
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elements = append(elements, p.partitionPage(page, pageLines[i], body)...)
	}
	return elements, nil
}

func (p *Partitioner) partitionPage(page domain.Page, lines []pdf.Line, body float64) []domain.Element {
	regions := tables.FindRegions(lines, p.minRows, p.minColumns)
	regionAt := make(map[float64]int)
	for i, r := range regions {
		for _, l := range r.Lines {
			regionAt[l.Y] = i + 1
		}
	}

	var elements []domain.Element
	var para *domain.Element
	var paraLine pdf.Line

	flush := func() {
		if para != nil {
			elements = append(elements, *para)
			para = nil
		}
	}

	emitted := make(map[int]bool)
	for _, line := range lines {
		text := strings.TrimSpace(line.Text())
		if text == "" {
			continue
		}

		if idx, ok := regionAt[line.Y]; ok {
			flush()
			if !emitted[idx] {
				emitted[idx] = true
				r := regions[idx-1]
				elements = append(elements, domain.Element{
					Type:     domain.ElementTable,
					Text:     r.Text(),
					Page:     page.Number,
					Bounds:   r.Bounds(),
					FontSize: line.FontSize,
				})
			}
			continue
		}

		typ := p.classify(line, text, page, body)
		if typ == domain.ElementNarrativeText && para != nil && continues(paraLine, line) {
			para.Text = joinText(para.Text, text)
			para.Bounds = para.Bounds.Union(line.Bounds())
			paraLine = line
			continue
		}

		flush()
		el := domain.Element{
			Type:     typ,
			Text:     text,
			Page:     page.Number,
			Bounds:   line.Bounds(),
			FontSize: line.FontSize,
		}
		if typ == domain.ElementNarrativeText {
			para, paraLine = &el, line
			continue
		}
		elements = append(elements, el)
	}
	flush()

	return elements
}

func (p *Partitioner) classify(line pdf.Line, text string, page domain.Page, body float64) domain.ElementType {
	if page.Height > 0 && p.marginBand > 0 {
		switch {
		case line.Y > page.Height*(1-p.marginBand):
			return domain.ElementHeader
		case line.Y < page.Height*p.marginBand:
			return domain.ElementFooter
		}
	}

	if line.FontSize >= body*p.titleRatio {
		return domain.ElementTitle
	}
	if listPrefix.MatchString(text) {
		return domain.ElementListItem
	}
	if line.HasFont("bold") && isShort(text) && !endsSentence(text) {
		return domain.ElementTitle
	}
	if endsSentence(text) || wordCount(text) >= 5 {
		return domain.ElementNarrativeText
	}
	return domain.ElementUncategorized
}

// continues reports whether next reads as the following line of prev's paragraph.
func continues(prev, next pdf.Line) bool {
	fs := max(prev.FontSize, next.FontSize, 1)
	if abs(prev.FontSize-next.FontSize) > 0.5 {
		return false
	}
	gap := prev.Y - next.Y
	return gap > 0 && gap <= 1.5*fs
}

func joinText(a, b string) string {
	last, _ := utf8.DecodeLastRuneInString(a)
	first, _ := utf8.DecodeRuneInString(b)
	if unicode.Is(unicode.Han, last) || unicode.Is(unicode.Han, first) {
		return a + b
	}
	return a + " " + b
}

func endsSentence(text string) bool {
	last, _ := utf8.DecodeLastRuneInString(text)
	return strings.ContainsRune(sentenceEnd, last)
}

func isShort(text string) bool {
	return wordCount(text) <= 12 && utf8.RuneCountInString(text) <= 80
}

// wordCount counts whitespace-separated words; each Han character counts as one.
func wordCount(text string) int {
	n := 0
	for _, field := range strings.Fields(text) {
		han := 0
		for _, r := range field {
			if unicode.Is(unicode.Han, r) {
				han++
			}
		}
		if han > 0 {
			n += han
		} else {
			n++
		}
	}
	return n
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
