package models

import "github.com/google/uuid"

// Meal type constants.
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
)

// MealTypes lists the three meal types in display order.
var MealTypes = []string{MealTypeBreakfast, MealTypeLunch, MealTypeDinner}

// Meal is one of breakfast/lunch/dinner for a day. It exists only if the
// source sheet yielded at least one component or a total-kcal figure for
// that block.
type Meal struct {
	ID          uuid.UUID `json:"id"`
	DailyMenuID uuid.UUID `json:"daily_menu_id"`
	MealType    string    `json:"meal_type"`
	TotalKcal   *float64  `json:"total_kcal,omitempty"`
}
