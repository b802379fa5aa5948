package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// MealRepository provides data access for the meals of a day.
type MealRepository interface {
	// Create inserts a single meal.
	Create(ctx context.Context, meal *models.Meal) error

	// CreateBatch inserts multiple meals efficiently.
	CreateBatch(ctx context.Context, meals []*models.Meal) error

	// FindByDailyAndType returns the meal of a given type for a day, or
	// nil if the day has no such meal.
	FindByDailyAndType(ctx context.Context, dailyMenuID uuid.UUID, mealType string) (*models.Meal, error)

	// ListByDailyMenu returns the meals of a day in canonical meal order.
	ListByDailyMenu(ctx context.Context, dailyMenuID uuid.UUID) ([]*models.Meal, error)
}

type mealRepository struct{}

// NewMealRepository creates a new MealRepository.
func NewMealRepository() MealRepository {
	return &mealRepository{}
}

var _ MealRepository = (*mealRepository)(nil)

func (r *mealRepository) Create(ctx context.Context, meal *models.Meal) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO meals (daily_menu_id, meal_type, total_kcal)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := q.QueryRow(ctx, query, meal.DailyMenuID, meal.MealType, meal.TotalKcal).Scan(&meal.ID)
	if err != nil {
		return fmt.Errorf("failed to create meal: %w", err)
	}

	return nil
}

func (r *mealRepository) CreateBatch(ctx context.Context, meals []*models.Meal) error {
	if len(meals) == 0 {
		return nil
	}

	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO meals (daily_menu_id, meal_type, total_kcal)
		VALUES ($1, $2, $3)
		RETURNING id`

	batch := &pgx.Batch{}
	for _, meal := range meals {
		batch.Queue(query, meal.DailyMenuID, meal.MealType, meal.TotalKcal)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range meals {
		if err := results.QueryRow().Scan(&meals[i].ID); err != nil {
			return fmt.Errorf("failed to create meal %d: %w", i, err)
		}
	}

	return nil
}

func (r *mealRepository) FindByDailyAndType(ctx context.Context, dailyMenuID uuid.UUID, mealType string) (*models.Meal, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, daily_menu_id, meal_type, total_kcal
		FROM meals
		WHERE daily_menu_id = $1 AND meal_type = $2`

	var m models.Meal
	err := q.QueryRow(ctx, query, dailyMenuID, mealType).Scan(&m.ID, &m.DailyMenuID, &m.MealType, &m.TotalKcal)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan meal: %w", err)
	}

	return &m, nil
}

func (r *mealRepository) ListByDailyMenu(ctx context.Context, dailyMenuID uuid.UUID) ([]*models.Meal, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	// breakfast < dinner < lunch alphabetically, so order explicitly.
	query := `
		SELECT id, daily_menu_id, meal_type, total_kcal
		FROM meals
		WHERE daily_menu_id = $1
		ORDER BY CASE meal_type
			WHEN 'breakfast' THEN 1
			WHEN 'lunch' THEN 2
			WHEN 'dinner' THEN 3
			ELSE 4
		END`

	rows, err := q.Query(ctx, query, dailyMenuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []*models.Meal
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(&m.ID, &m.DailyMenuID, &m.MealType, &m.TotalKcal); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meals: %w", err)
	}

	return meals, nil
}
