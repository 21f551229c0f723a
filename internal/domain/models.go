package domain

import (
	"fmt"
	"time"
)

// DefaultOCRLanguages is the language pack used for every OCR pass:
// Simplified Chinese plus English.
var DefaultOCRLanguages = []string{"chi_sim", "eng"}

// PageImage represents a single rasterised PDF page
type PageImage struct {
	PageNumber int
	ImagePath  string // Path to temporary PNG file
	Width      int
	Height     int
	HasText    bool // Page already carries a text layer
}

// Options selects which operations a session runs. It is read-only once a
// run has started.
type Options struct {
	OCR        bool `json:"ocr" yaml:"ocr"`
	Text       bool `json:"extract_text" yaml:"extract_text"`
	Images     bool `json:"extract_images" yaml:"extract_images"`
	Tables     bool `json:"extract_tables" yaml:"extract_tables"`
	Structured bool `json:"extract_structured" yaml:"extract_structured"`
	KeepTemp   bool `json:"keep_temp" yaml:"keep_temp"`
}

// AllOptions enables every extraction operation.
func AllOptions() Options {
	return Options{OCR: true, Text: true, Images: true, Tables: true, Structured: true}
}

// Any reports whether at least one extraction operation is selected.
func (o Options) Any() bool {
	return o.OCR || o.Text || o.Images || o.Tables || o.Structured
}

// WithDefaults returns o, or all operations when none is selected.
// KeepTemp is preserved either way.
func (o Options) WithDefaults() Options {
	if o.Any() {
		return o
	}
	all := AllOptions()
	all.KeepTemp = o.KeepTemp
	return all
}

// ResultKind tags the variant held by an ExtractionResult
type ResultKind string

const (
	KindOCR        ResultKind = "ocr"
	KindText       ResultKind = "text"
	KindImages     ResultKind = "images"
	KindTables     ResultKind = "tables"
	KindStructured ResultKind = "structured"
)

// ExtractionResult is the outcome of one extraction operation. Only the
// fields belonging to Kind are populated. Err carries the diagnostic when
// the operation degraded; the result is still usable.
type ExtractionResult struct {
	Kind ResultKind `json:"kind"`

	OCRPath      string    `json:"ocr_path,omitempty"`
	Text         string    `json:"text,omitempty"`
	ImagesDir    string    `json:"images_dir,omitempty"`
	ImageFiles   []string  `json:"image_files,omitempty"`
	WorkbookPath string    `json:"workbook_path,omitempty"`
	TableCount   int       `json:"table_count,omitempty"`
	Elements     []Element `json:"elements,omitempty"`

	Err error `json:"-"`
}

// Degraded reports whether the operation failed internally.
func (r ExtractionResult) Degraded() bool {
	return r.Err != nil
}

// Present reports whether the operation produced its artifact. An OCR result
// is always present (it falls back to the source path).
func (r ExtractionResult) Present() bool {
	switch r.Kind {
	case KindOCR:
		return r.OCRPath != ""
	case KindText:
		return r.Text != ""
	case KindImages:
		return r.ImagesDir != ""
	case KindTables:
		return r.WorkbookPath != ""
	case KindStructured:
		return len(r.Elements) > 0
	default:
		return false
	}
}

// ElementType is the semantic category of a layout element
type ElementType string

const (
	ElementTitle         ElementType = "Title"
	ElementNarrativeText ElementType = "NarrativeText"
	ElementListItem      ElementType = "ListItem"
	ElementTable         ElementType = "Table"
	ElementHeader        ElementType = "Header"
	ElementFooter        ElementType = "Footer"
	ElementUncategorized ElementType = "UncategorizedText"
)

// Rect is an axis-aligned box in PDF user space (points, origin bottom-left)
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union returns the smallest rect covering r and o. A zero r is treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Element is one typed piece of document layout
type Element struct {
	Type     ElementType `json:"type"`
	Text     string      `json:"text"`
	Page     int         `json:"page"`
	Bounds   Rect        `json:"bounds"`
	FontSize float64     `json:"font_size,omitempty"`
}

// TextRun is a positioned fragment of text on a page
type TextRun struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
	Font     string
}

// Page holds the positioned text runs of one page
type Page struct {
	Number int
	Width  float64
	Height float64
	Runs   []TextRun
}

// Table is one detected table
type Table struct {
	Page  int        `json:"page"`
	Index int        `json:"index"` // 1-based within the page
	Rows  [][]string `json:"rows"`
}

// EmbeddedImage is an image XObject pulled out of a page
type EmbeddedImage struct {
	Page  int    // 1-based
	Index int    // 1-based within the page
	Ext   string // file extension without dot
	Data  []byte
}

// FileName returns the canonical name for an extracted image.
func (i EmbeddedImage) FileName() string {
	return fmt.Sprintf("image_p%d_%d.%s", i.Page, i.Index, i.Ext)
}

// EventType represents the type of progress event
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// ProgressEvent represents an event emitted during a run. The channel that
// carries them ends with exactly one EventComplete or EventError.
type ProgressEvent struct {
	Type      EventType   `json:"type"`
	Percent   int         `json:"percent"`
	Message   string      `json:"message,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Err       error       `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
}

// ProcessingStats summarises a finished run
type ProcessingStats struct {
	TotalTime time.Duration
	Requested int
	Degraded  int
}
