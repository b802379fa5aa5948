package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyMenu is one calendar day inside a week. Days whose date falls
// outside the target (year, month) are never persisted.
type DailyMenu struct {
	ID             uuid.UUID         `json:"id"`
	WeeklyMenuID   uuid.UUID         `json:"weekly_menu_id"`
	Date           time.Time         `json:"date"`
	DayOfWeek      string            `json:"day_of_week,omitempty"`
	IsHoliday      bool              `json:"is_holiday"`
	NutritionFlags map[string]string `json:"nutrition_flags,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
