package models

import "github.com/google/uuid"

// MealComponent is one dish inside a meal (soup, main course, drink...).
// OrderPosition is a dense 1-based sequence within the meal and is the
// sole authoritative display order.
type MealComponent struct {
	ID              uuid.UUID `json:"id"`
	MealID          uuid.UUID `json:"meal_id"`
	ComponentTypeID uuid.UUID `json:"component_type_id"`
	DishName        string    `json:"dish_name"`
	Calories        *float64  `json:"calories,omitempty"`
	OrderPosition   int       `json:"order_position"`
}
