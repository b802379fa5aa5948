package models

import (
	"time"

	"github.com/google/uuid"
)

// Menu status constants.
const (
	MenuStatusDraft  = "draft"
	MenuStatusActive = "active"
)

// MonthlyMenu is the root of one month's normalized menu tree.
// Unique per (year, month). It stays in draft until every sheet of the
// source workbook has been rebuilt successfully.
type MonthlyMenu struct {
	ID             uuid.UUID `json:"id"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	Status         string    `json:"status"`
	SourceFilename string    `json:"source_filename,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
