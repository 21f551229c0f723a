// Package export copies session results out of the scratch directory into
// a caller-chosen destination.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spherical/pdf-parser/internal/domain"
)

// File names written into the destination directory.
const (
	TextFile       = "extracted_text.txt"
	ImagesDir      = "images"
	StructuredFile = "structured_elements.json"
)

// Results collects what the export steps produced
type Results struct {
	OutputDir      string           `json:"output_dir"`
	OCRFile        string           `json:"ocr_file,omitempty"`
	TextFile       string           `json:"text_file,omitempty"`
	Text           string           `json:"-"`
	ImagesDir      string           `json:"images_dir,omitempty"`
	ImageFiles     []string         `json:"image_files,omitempty"`
	TablesFile     string           `json:"tables_file,omitempty"`
	TableCount     int              `json:"table_count,omitempty"`
	StructuredFile string           `json:"structured_file,omitempty"`
	Elements       []domain.Element `json:"-"`
	Degraded       []string         `json:"degraded,omitempty"`
}

// Exporter writes into one destination directory
type Exporter struct {
	dir     string
	logger  *domain.Logger
	results Results
}

// New creates the destination directory (and parents) if needed.
func New(destDir string, logger *domain.Logger) (*Exporter, error) {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, domain.IOError(fmt.Sprintf("Failed to create output directory %s", destDir), err)
	}
	return &Exporter{
		dir:     destDir,
		logger:  logger.WithPrefix("export"),
		results: Results{OutputDir: destDir},
	}, nil
}

// Dir returns the destination directory
func (e *Exporter) Dir() string { return e.dir }

// Results returns a copy of everything exported so far.
func (e *Exporter) Results() Results {
	r := e.results
	r.ImageFiles = append([]string(nil), e.results.ImageFiles...)
	r.Degraded = append([]string(nil), e.results.Degraded...)
	return r
}

// MarkDegraded records that an operation finished with a diagnostic.
func (e *Exporter) MarkDegraded(kind domain.ResultKind) {
	e.results.Degraded = append(e.results.Degraded, string(kind))
}

// OCR copies the OCR output to ocr_<name>. Nothing is copied when ocrPath is
// the source itself, which is what a failed OCR pass returns.
func (e *Exporter) OCR(sourcePath, ocrPath string) error {
	if ocrPath == "" || samePath(sourcePath, ocrPath) {
		e.logger.Debug("no OCR output to export")
		return nil
	}

	dst := filepath.Join(e.dir, "ocr_"+filepath.Base(sourcePath))
	if err := copyFile(ocrPath, dst); err != nil {
		return domain.IOError("Failed to export OCR output", err)
	}
	e.results.OCRFile = dst
	return nil
}

// Text writes extracted_text.txt. Empty text only logs a warning.
func (e *Exporter) Text(text string) error {
	if text == "" {
		e.logger.Warn("no text extracted, %s not written", TextFile)
		return nil
	}

	dst := filepath.Join(e.dir, TextFile)
	if err := os.WriteFile(dst, []byte(text), 0o644); err != nil {
		return domain.IOError("Failed to write extracted text", err)
	}
	e.results.TextFile = dst
	e.results.Text = text
	return nil
}

// Images copies every regular file of srcDir into images/.
func (e *Exporter) Images(srcDir string) error {
	if srcDir == "" {
		return nil
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return domain.IOError("Failed to read images directory", err)
	}

	dstDir := filepath.Join(e.dir, ImagesDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return domain.IOError("Failed to create images directory", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		dst := filepath.Join(dstDir, entry.Name())
		if err := copyFile(filepath.Join(srcDir, entry.Name()), dst); err != nil {
			return domain.IOError(fmt.Sprintf("Failed to export %s", entry.Name()), err)
		}
		e.results.ImageFiles = append(e.results.ImageFiles, dst)
	}
	e.results.ImagesDir = dstDir
	return nil
}

// Tables copies the workbook to tables_<stem>.xlsx.
func (e *Exporter) Tables(workbookPath, stem string, count int) error {
	if workbookPath == "" {
		return nil
	}

	dst := filepath.Join(e.dir, fmt.Sprintf("tables_%s.xlsx", stem))
	if err := copyFile(workbookPath, dst); err != nil {
		return domain.IOError("Failed to export tables", err)
	}
	e.results.TablesFile = dst
	e.results.TableCount = count
	return nil
}

// Structured writes the elements as indented JSON.
func (e *Exporter) Structured(elements []domain.Element) error {
	if elements == nil {
		elements = []domain.Element{}
	}

	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return domain.IOError("Failed to encode structured elements", err)
	}

	dst := filepath.Join(e.dir, StructuredFile)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return domain.IOError("Failed to write structured elements", err)
	}
	e.results.StructuredFile = dst
	e.results.Elements = elements
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// copyFile copies src to dst, keeping the mode and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
