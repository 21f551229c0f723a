package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/xuri/excelize/v2"
)

// WorkbookWriter writes detected tables to an .xlsx file, one sheet per table
type WorkbookWriter struct {
	sheetPrefix string
}

// NewWorkbookWriter creates a writer naming sheets <prefix><n>, n from 1
func NewWorkbookWriter(sheetPrefix string) *WorkbookWriter {
	if sheetPrefix == "" {
		sheetPrefix = "Table_"
	}
	return &WorkbookWriter{sheetPrefix: sheetPrefix}
}

// SheetName returns the sheet name for the n-th table (1-based).
func (w *WorkbookWriter) SheetName(n int) string {
	return fmt.Sprintf("%s%d", w.sheetPrefix, n)
}

// Write implements domain.WorkbookWriter. It returns domain.ErrNoTables and
// writes nothing when tables is empty.
func (w *WorkbookWriter) Write(path string, tables []domain.Table) error {
	if len(tables) == 0 {
		return domain.ErrNoTables
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		sheet := w.SheetName(i + 1)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return domain.IOError("Failed to name sheet", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return domain.IOError(fmt.Sprintf("Failed to add sheet %s", sheet), err)
		}

		for r, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return domain.IOError("Invalid cell reference", err)
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = cellValue(v)
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return domain.IOError(fmt.Sprintf("Failed to write row %d of %s", r+1, sheet), err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return domain.IOError("Failed to save workbook", err)
	}
	return nil
}

// cellValue stores plain numbers as numbers so spreadsheet formulas work on them.
func cellValue(s string) interface{} {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	// zero-padded codes stay text
	if len(trimmed) > 1 && trimmed[0] == '0' && trimmed[1] != '.' {
		return s
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil && !strings.HasPrefix(trimmed, "+") {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !strings.ContainsAny(trimmed, "+eEnNiI") {
		return f
	}
	return s
}
