package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// MealComponentRepository provides data access for the dishes of a meal.
type MealComponentRepository interface {
	// Create inserts a single component.
	Create(ctx context.Context, component *models.MealComponent) error

	// CreateBatch inserts multiple components efficiently.
	CreateBatch(ctx context.Context, components []*models.MealComponent) error

	// ListByMeal returns a meal's components ordered by their position.
	ListByMeal(ctx context.Context, mealID uuid.UUID) ([]*models.MealComponent, error)

	// UpdateDishName rewrites the dish text of one component.
	UpdateDishName(ctx context.Context, componentID uuid.UUID, dishName string) error
}

type mealComponentRepository struct{}

// NewMealComponentRepository creates a new MealComponentRepository.
func NewMealComponentRepository() MealComponentRepository {
	return &mealComponentRepository{}
}

var _ MealComponentRepository = (*mealComponentRepository)(nil)

func (r *mealComponentRepository) Create(ctx context.Context, component *models.MealComponent) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO meal_components (meal_id, component_type_id, dish_name, calories, order_position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := q.QueryRow(ctx, query,
		component.MealID,
		component.ComponentTypeID,
		component.DishName,
		component.Calories,
		component.OrderPosition,
	).Scan(&component.ID)
	if err != nil {
		return fmt.Errorf("failed to create meal component: %w", err)
	}

	return nil
}

func (r *mealComponentRepository) CreateBatch(ctx context.Context, components []*models.MealComponent) error {
	if len(components) == 0 {
		return nil
	}

	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO meal_components (meal_id, component_type_id, dish_name, calories, order_position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	batch := &pgx.Batch{}
	for _, c := range components {
		batch.Queue(query, c.MealID, c.ComponentTypeID, c.DishName, c.Calories, c.OrderPosition)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range components {
		if err := results.QueryRow().Scan(&components[i].ID); err != nil {
			return fmt.Errorf("failed to create meal component %d: %w", i, err)
		}
	}

	return nil
}

func (r *mealComponentRepository) ListByMeal(ctx context.Context, mealID uuid.UUID) ([]*models.MealComponent, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, meal_id, component_type_id, dish_name, calories, order_position
		FROM meal_components
		WHERE meal_id = $1
		ORDER BY order_position`

	rows, err := q.Query(ctx, query, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal components: %w", err)
	}
	defer rows.Close()

	var components []*models.MealComponent
	for rows.Next() {
		var c models.MealComponent
		err := rows.Scan(&c.ID, &c.MealID, &c.ComponentTypeID, &c.DishName, &c.Calories, &c.OrderPosition)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal component: %w", err)
		}
		components = append(components, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal components: %w", err)
	}

	return components, nil
}

func (r *mealComponentRepository) UpdateDishName(ctx context.Context, componentID uuid.UUID, dishName string) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `UPDATE meal_components SET dish_name = $2 WHERE id = $1`

	result, err := q.Exec(ctx, query, componentID, dishName)
	if err != nil {
		return fmt.Errorf("failed to update dish name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("meal component %s: %w", componentID, apperrors.ErrNotFound)
	}

	return nil
}
