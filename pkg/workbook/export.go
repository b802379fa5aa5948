package workbook

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportDay is one row of the monthly export: the day plus the dish text
// of each meal.
type ExportDay struct {
	Date      time.Time
	DayOfWeek string
	IsHoliday bool
	Breakfast string
	Lunch     string
	Dinner    string
}

var exportHeader = []string{"Fecha", "Día", "Festivo", "Desayuno", "Almuerzo", "Cena"}

var exportColumnWidths = []float64{14, 14, 10, 32, 32, 32}

// BuildMonthlyExport renders the normalized month as a tabular xlsx file:
// one row per day, one column per meal.
func BuildMonthlyExport(year, month int, days []ExportDay) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := fmt.Sprintf("Menú %04d-%02d", year, month)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeader {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cellName, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cellName, err)
		}
		if err := f.SetCellStyle(sheetName, cellName, cellName, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, day := range days {
		row := i + 2
		holiday := ""
		if day.IsHoliday {
			holiday = "Sí"
		}
		values := []any{
			day.Date.Format("2006-01-02"),
			day.DayOfWeek,
			holiday,
			day.Breakfast,
			day.Lunch,
			day.Dinner,
		}
		for col, value := range values {
			cellName, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cellName, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cellName, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}
