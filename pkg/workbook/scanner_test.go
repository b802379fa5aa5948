package workbook

import (
	"errors"
	"testing"
	"time"
)

// weekGrid builds a small but realistic week sheet: a title row, the day
// header with paired name/value columns, a date row, and three meal blocks
// scanned from the label column.
func weekGrid() [][]string {
	return [][]string{
		{"MENÚ SEMANAL COMEDOR"},
		{"", "LUNES", "", "MARTES", "", "MIÉRCOLES", ""},
		{"", "10/03/2025", "", "11/03/2025", "", "12/03/2025", ""},
		{"DESAYUNO"},
		{"BEBIDA CALIENTE", "Avena con leche", "120", "Quinua con manzana", "130", "Leche con cacao", "125"},
		{"PAN", "Pan con queso", "210", "-----", "", "Pan con palta", "190"},
		{"TOTAL KCAL", "", "330", "", "130", "", "315"},
		{"ALMUERZO"},
		{"ENTRADA", "Ensalada fresca", "90", "Papa a la huancaína", "240", "Sopa de verduras", "110"},
		{"PLATO DE FONDO", "Arroz con pollo", "520", "Lomo saltado", "610", "Ají de gallina", "560"},
		{"REFRESCO", "Chicha morada", "80", "Limonada", "70", "Maracuyá", "75"},
		{"TOTAL KCAL", "", "690", "", "920", "", "745"},
		{"CENA"},
		{"PLATO CALIENTE", "Sopa a la minuta", "310", "Tallarín verde", "450", "-----", ""},
		{"TOTAL KCAL", "", "310", "", "450", "", ""},
	}
}

func TestScanSheetBasicLayout(t *testing.T) {
	scan, err := ScanSheet("SEMANA 2", weekGrid())
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}

	if len(scan.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(scan.Days))
	}

	monday := scan.Days[0]
	if !monday.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monday date = %v", monday.Date)
	}
	if monday.DayName != "LUNES" {
		t.Errorf("monday day name = %q", monday.DayName)
	}
	if len(monday.Meals) != 3 {
		t.Fatalf("monday has %d meals, want 3", len(monday.Meals))
	}

	breakfast := monday.Meals[0]
	if breakfast.MealType != "breakfast" {
		t.Errorf("first meal type = %q", breakfast.MealType)
	}
	if len(breakfast.Components) != 2 {
		t.Fatalf("monday breakfast has %d components, want 2", len(breakfast.Components))
	}
	if breakfast.Components[0].DishName != "Avena con leche" {
		t.Errorf("first dish = %q", breakfast.Components[0].DishName)
	}
	if breakfast.Components[0].Calories == nil || *breakfast.Components[0].Calories != 120 {
		t.Errorf("first dish calories = %v", breakfast.Components[0].Calories)
	}
}

func TestScanSheetTotalKcalRow(t *testing.T) {
	scan, err := ScanSheet("SEMANA 2", weekGrid())
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}

	lunch := scan.Days[1].Meals[1]
	if lunch.MealType != "lunch" {
		t.Fatalf("meal type = %q", lunch.MealType)
	}
	if lunch.TotalKcal == nil || *lunch.TotalKcal != 920 {
		t.Errorf("tuesday lunch total kcal = %v, want 920", lunch.TotalKcal)
	}
	// The total row must never appear as a component.
	for _, c := range lunch.Components {
		if NormalizeLabel(c.Label) == "TOTAL KCAL" {
			t.Errorf("total row leaked into components: %+v", c)
		}
	}
}

func TestScanSheetSentinelDish(t *testing.T) {
	scan, err := ScanSheet("SEMANA 2", weekGrid())
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}

	// Tuesday's PAN cell is "-----": no component, not an empty-named one.
	tuesdayBreakfast := scan.Days[1].Meals[0]
	if len(tuesdayBreakfast.Components) != 1 {
		t.Fatalf("tuesday breakfast has %d components, want 1", len(tuesdayBreakfast.Components))
	}
	for _, c := range tuesdayBreakfast.Components {
		if c.DishName == "" {
			t.Errorf("component with empty dish name emitted: %+v", c)
		}
	}

	// Wednesday's dinner has only a sentinel dish and a blank total: the
	// meal must not be emitted at all.
	wednesday := scan.Days[2]
	for _, m := range wednesday.Meals {
		if m.MealType == "dinner" {
			t.Errorf("wednesday dinner should not exist, got %+v", m)
		}
	}
}

func TestScanSheetMergedDateProbe(t *testing.T) {
	grid := weekGrid()
	// Simulate a merged date cell whose anchor sits one column left of the
	// day header, as happens when the date row merges a wider range.
	grid[2][1] = ""
	grid[2][0] = "10/03/2025"

	scan, err := ScanSheet("SEMANA 2", grid)
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}
	if len(scan.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(scan.Days))
	}
	if !scan.Days[0].Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("merged-cell date = %v, want 2025-03-10", scan.Days[0].Date)
	}
	// The probe must not steal the anchored date for a later day.
	if !scan.Days[1].Date.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("tuesday date = %v, want 2025-03-11", scan.Days[1].Date)
	}
}

func TestScanSheetUnparseableDateSkipsDay(t *testing.T) {
	grid := weekGrid()
	grid[2][3] = "semana santa"

	scan, err := ScanSheet("SEMANA 2", grid)
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}
	if len(scan.Days) != 2 {
		t.Fatalf("got %d days, want 2 (unparseable day dropped)", len(scan.Days))
	}
	if len(scan.SkippedDates) != 1 || scan.SkippedDates[0] != "semana santa" {
		t.Errorf("SkippedDates = %v", scan.SkippedDates)
	}
}

func TestScanSheetMissingDateSkipsDay(t *testing.T) {
	grid := weekGrid()
	grid[2][5] = ""

	scan, err := ScanSheet("SEMANA 2", grid)
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}
	if len(scan.Days) != 2 {
		t.Fatalf("got %d days, want 2 (blank-date day dropped)", len(scan.Days))
	}
	// A silently blank date is not a parse failure.
	if len(scan.SkippedDates) != 0 {
		t.Errorf("SkippedDates = %v, want empty", scan.SkippedDates)
	}
}

func TestScanSheetNoDayHeader(t *testing.T) {
	grid := [][]string{
		{"MENÚ SEMANAL"},
		{"sin cabecera de días"},
		{"DESAYUNO"},
		{"PAN", "Pan con queso", "210"},
	}

	_, err := ScanSheet("HOJA MALA", grid)
	if err == nil {
		t.Fatal("expected LayoutError")
	}
	var layoutErr *LayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("error %v is not a LayoutError", err)
	}
	if layoutErr.Sheet != "HOJA MALA" {
		t.Errorf("offending sheet = %q", layoutErr.Sheet)
	}
}

func TestScanSheetSingleDayNameIsNotHeader(t *testing.T) {
	// One stray day name in a row must not be mistaken for the header.
	grid := [][]string{
		{"ENTREGA DEL LUNES"},
		{"", "LUNES", "", "MARTES", ""},
		{"", "10/03/2025", "", "11/03/2025", ""},
		{"ALMUERZO"},
		{"FONDO", "Arroz con pollo", "520", "Lomo saltado", "610"},
	}
	scan, err := ScanSheet("SEMANA", grid)
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}
	if len(scan.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(scan.Days))
	}
}

func TestScanSheetRaggedRows(t *testing.T) {
	// Trailing empty cells are routinely trimmed by spreadsheet readers;
	// short rows must not panic or shift columns.
	grid := [][]string{
		{"", "LUNES", "", "MARTES"},
		{"", "10/03/2025", "", "11/03/2025"},
		{"CENA"},
		{"PLATO CALIENTE", "Sopa a la minuta"},
	}
	scan, err := ScanSheet("SEMANA", grid)
	if err != nil {
		t.Fatalf("ScanSheet: %v", err)
	}
	if len(scan.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(scan.Days))
	}
	monday := scan.Days[0]
	if len(monday.Meals) != 1 || len(monday.Meals[0].Components) != 1 {
		t.Fatalf("monday meals = %+v", monday.Meals)
	}
	if monday.Meals[0].Components[0].Calories != nil {
		t.Errorf("calories should be absent for missing value cell")
	}
	// Tuesday's dish cell does not exist; no meal should be emitted.
	if len(scan.Days[1].Meals) != 0 {
		t.Errorf("tuesday meals = %+v, want none", scan.Days[1].Meals)
	}
}
