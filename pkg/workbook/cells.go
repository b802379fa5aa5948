package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder cell values that must be treated as empty, not as content.
var sentinelValues = map[string]struct{}{
	"":      {},
	"-----": {},
	"XXX":   {},
	"####":  {},
	"##":    {},
	"-":     {},
}

// excelEpoch is the base date for spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// MalformedDateError reports a cell value that could not be interpreted as
// a date in any accepted format.
type MalformedDateError struct {
	Value string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date value %q", e.Value)
}

// NormalizeLabel trims, upper-cases and strips diacritics so day names and
// block markers match case- and accent-insensitively ("Miércoles" -> "MIERCOLES").
func NormalizeLabel(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	stripped, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return stripped
}

// CleanText trims the raw value and collapses placeholder cells ("-----",
// "##", ...) to the empty string, so a placeholder dish cell means "no dish".
func CleanText(raw string) string {
	s := strings.TrimSpace(raw)
	if _, ok := sentinelValues[strings.ToUpper(s)]; ok {
		return ""
	}
	return s
}

// ParseCalories parses a decimal calorie figure, accepting comma as the
// decimal separator. Sentinel and unparseable values yield absent.
func ParseCalories(raw string) (float64, bool) {
	s := CleanText(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/06",
	"02-01-06",
}

// ParseFlexibleDate accepts the textual date formats that appear in menu
// spreadsheets plus integer serial dates (days since 1899-12-30). Time
// components, as in datetime-formatted cells, are discarded.
func ParseFlexibleDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &MalformedDateError{Value: raw}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Datetime-formatted cells ("2025-03-10 00:00:00", "10/03/2025 00:00").
	if fields := strings.Fields(s); len(fields) > 1 {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, fields[0]); err == nil {
				return t, nil
			}
		}
	}

	if serial, err := strconv.Atoi(s); err == nil && serial > 0 {
		return excelEpoch.AddDate(0, 0, serial), nil
	}

	return time.Time{}, &MalformedDateError{Value: raw}
}
