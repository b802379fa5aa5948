package workbook

import (
	"fmt"
	"strings"
	"time"
)

// Day-name tokens of the source locale, after NormalizeLabel.
var dayNames = map[string]struct{}{
	"LUNES":     {},
	"MARTES":    {},
	"MIERCOLES": {},
	"JUEVES":    {},
	"VIERNES":   {},
	"SABADO":    {},
	"DOMINGO":   {},
}

// Meal-block markers scanned in the sheet's label column, mapped to the
// canonical meal type.
var mealMarkers = []struct {
	Marker   string
	MealType string
}{
	{"DESAYUNO", "breakfast"},
	{"ALMUERZO", "lunch"},
	{"CENA", "dinner"},
}

// LayoutError reports a sheet whose structure could not be inferred at all.
type LayoutError struct {
	Sheet  string
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Reason)
}

// ScannedComponent is one extracted block row for one day.
type ScannedComponent struct {
	Label    string
	DishName string
	Calories *float64
}

// ScannedMeal is one meal block's content for one day. A meal is emitted
// only when at least one component or a total-kcal figure was found.
type ScannedMeal struct {
	MealType   string
	Components []ScannedComponent
	TotalKcal  *float64
}

// ScannedDay is one day column pair with everything extracted for it.
type ScannedDay struct {
	Date    time.Time
	DayName string
	Meals   []ScannedMeal
}

// SheetScan is the typed intermediate representation of one sheet: pure
// grid inference, no domain entities, no storage.
type SheetScan struct {
	SheetName string
	Days      []ScannedDay
	// SkippedDates holds raw date-cell values that failed to parse. Those
	// day columns are dropped, which is expected for boundary weeks.
	SkippedDates []string
}

// dayColumn pairs a day header with its name/value column indexes (0-based).
type dayColumn struct {
	date     time.Time
	dayName  string
	nameCol  int
	valueCol int
}

// mealBlock is a marker row plus the row range it owns (0-based, inclusive).
type mealBlock struct {
	mealType string
	firstRow int
	lastRow  int
}

// cell returns the trimmed value at (row, col), tolerating ragged grids.
func cell(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	r := grid[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

func gridWidth(grid [][]string) int {
	w := 0
	for _, r := range grid {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// ScanSheet infers the layout of one week's sheet and extracts its days,
// meal blocks and components. It is a pure function of the grid; the only
// hard failure is a sheet with no recognizable day-header row.
func ScanSheet(sheetName string, grid [][]string) (*SheetScan, error) {
	headerRow, ok := findDayHeaderRow(grid)
	if !ok {
		return nil, &LayoutError{Sheet: sheetName, Reason: "no day header found"}
	}

	scan := &SheetScan{SheetName: sheetName}
	days := pairDayColumns(grid, headerRow, scan)
	blocks := findMealBlocks(grid)

	for _, day := range days {
		scanned := ScannedDay{Date: day.date, DayName: day.dayName}
		for _, block := range blocks {
			if meal, ok := extractMeal(grid, block, day); ok {
				scanned.Meals = append(scanned.Meals, meal)
			}
		}
		scan.Days = append(scan.Days, scanned)
	}

	return scan, nil
}

// findDayHeaderRow returns the first row containing at least two day-name
// cells.
func findDayHeaderRow(grid [][]string) (int, bool) {
	for row := range grid {
		count := 0
		for col := range grid[row] {
			if _, ok := dayNames[NormalizeLabel(grid[row][col])]; ok {
				count++
			}
		}
		if count >= 2 {
			return row, true
		}
	}
	return 0, false
}

// pairDayColumns walks the header row left to right. Each day-name cell
// claims its own column as the dish-name column and the next column as the
// calorie column, so the walk advances by two on a match and one otherwise.
// Days without a parseable date are skipped: partial boundary weeks are
// expected, not an error.
func pairDayColumns(grid [][]string, headerRow int, scan *SheetScan) []dayColumn {
	dateRow := headerRow + 1
	width := gridWidth(grid)

	var days []dayColumn
	prevNameCol := -1

	col := 0
	for col < width {
		raw := cell(grid, headerRow, col)
		if _, ok := dayNames[NormalizeLabel(raw)]; !ok {
			col++
			continue
		}

		rawDate := lookupDateCell(grid, dateRow, col, prevNameCol)
		prevNameCol = col

		if rawDate == "" {
			col += 2
			continue
		}
		date, err := ParseFlexibleDate(rawDate)
		if err != nil {
			scan.SkippedDates = append(scan.SkippedDates, rawDate)
			col += 2
			continue
		}

		days = append(days, dayColumn{
			date:     date,
			dayName:  strings.TrimSpace(raw),
			nameCol:  col,
			valueCol: col + 1,
		})
		col += 2
	}

	return days
}

// lookupDateCell reads the date under a day header. Merged date cells
// anchor their value on the leftmost column of the run, so a blank cell is
// probed leftward (stopping before the previous day's columns) before the
// day is given up on.
func lookupDateCell(grid [][]string, dateRow, nameCol, prevNameCol int) string {
	if v := cell(grid, dateRow, nameCol); v != "" {
		return v
	}
	floor := 0
	if prevNameCol >= 0 {
		// First column past the previous day's value column.
		floor = prevNameCol + 2
	}
	for c := nameCol - 1; c >= floor; c-- {
		if v := cell(grid, dateRow, c); v != "" {
			return v
		}
	}
	return ""
}

// findMealBlocks scans the label column for block markers and assigns each
// block the rows from the marker down to the next marker (or sheet end).
func findMealBlocks(grid [][]string) []mealBlock {
	type markerHit struct {
		mealType string
		row      int
	}
	var hits []markerHit
	for row := range grid {
		label := NormalizeLabel(cell(grid, row, 0))
		if label == "" {
			continue
		}
		for _, m := range mealMarkers {
			if strings.Contains(label, m.Marker) {
				hits = append(hits, markerHit{mealType: m.MealType, row: row})
				break
			}
		}
	}

	blocks := make([]mealBlock, 0, len(hits))
	for i, h := range hits {
		last := len(grid) - 1
		if i+1 < len(hits) {
			last = hits[i+1].row - 1
		}
		blocks = append(blocks, mealBlock{mealType: h.mealType, firstRow: h.row + 1, lastRow: last})
	}
	return blocks
}

// isTotalRow reports whether a normalized label marks the block's
// total-calories row.
func isTotalRow(normLabel string) bool {
	return strings.Contains(normLabel, "TOTAL") && strings.Contains(normLabel, "KCAL")
}

// extractMeal reads one block's rows for one day. Rows with a label but no
// dish in this day's column mean "not served that day" and emit nothing.
func extractMeal(grid [][]string, block mealBlock, day dayColumn) (ScannedMeal, bool) {
	meal := ScannedMeal{MealType: block.mealType}

	for row := block.firstRow; row <= block.lastRow; row++ {
		label := cell(grid, row, 0)
		normLabel := NormalizeLabel(label)

		if isTotalRow(normLabel) {
			if kcal, ok := ParseCalories(cell(grid, row, day.valueCol)); ok {
				meal.TotalKcal = &kcal
			}
			continue
		}
		if CleanText(label) == "" {
			continue
		}

		dish := CleanText(cell(grid, row, day.nameCol))
		if dish == "" {
			continue
		}

		component := ScannedComponent{Label: strings.TrimSpace(label), DishName: dish}
		if kcal, ok := ParseCalories(cell(grid, row, day.valueCol)); ok {
			component.Calories = &kcal
		}
		meal.Components = append(meal.Components, component)
	}

	if len(meal.Components) == 0 && meal.TotalKcal == nil {
		return ScannedMeal{}, false
	}
	return meal, true
}
