package models

import "github.com/google/uuid"

// WeeklyMenu maps one workbook sheet to a week of the month.
// WeekNumber is the 1-based sheet position; Title keeps the original
// sheet name for traceability.
type WeeklyMenu struct {
	ID            uuid.UUID `json:"id"`
	MonthlyMenuID uuid.UUID `json:"monthly_menu_id"`
	WeekNumber    int       `json:"week_number"`
	Title         string    `json:"title,omitempty"`
}
