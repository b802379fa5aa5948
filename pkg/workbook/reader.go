package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedExtension is returned for files that are not spreadsheets.
var ErrUnsupportedExtension = errors.New("unsupported workbook extension")

// Sheet is one worksheet's raw grid, in workbook order.
type Sheet struct {
	Name string
	Grid [][]string
}

// Workbook is the raw cell content of an uploaded file, one grid per sheet.
type Workbook struct {
	Filename string
	Sheets   []Sheet
}

// Read parses workbook bytes into per-sheet grids. The extension is gated
// before any parsing so obviously wrong uploads fail fast with a clear error.
func Read(filename string, data []byte) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, fmt.Errorf("%q: %w", filename, ErrUnsupportedExtension)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %q: %w", filename, err)
	}
	defer f.Close()

	wb := &Workbook{Filename: filename}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Grid: rows})
	}

	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook %q has no sheets", filename)
	}
	return wb, nil
}
