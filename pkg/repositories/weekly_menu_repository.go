package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// WeeklyMenuRepository provides data access for the per-sheet week rows.
type WeeklyMenuRepository interface {
	// Upsert inserts the week or, when (monthly_menu_id, week_number)
	// already exists, refreshes its title. The model is populated with
	// the persisted ID.
	Upsert(ctx context.Context, week *models.WeeklyMenu) error

	// ListByMonthlyMenu returns the weeks of a month ordered by week number.
	ListByMonthlyMenu(ctx context.Context, monthlyMenuID uuid.UUID) ([]*models.WeeklyMenu, error)

	// DeleteByMonthlyMenu removes every week of a month. Days, meals and
	// components cascade away with them.
	DeleteByMonthlyMenu(ctx context.Context, monthlyMenuID uuid.UUID) error
}

type weeklyMenuRepository struct{}

// NewWeeklyMenuRepository creates a new WeeklyMenuRepository.
func NewWeeklyMenuRepository() WeeklyMenuRepository {
	return &weeklyMenuRepository{}
}

var _ WeeklyMenuRepository = (*weeklyMenuRepository)(nil)

func (r *weeklyMenuRepository) Upsert(ctx context.Context, week *models.WeeklyMenu) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO weekly_menus (monthly_menu_id, week_number, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (monthly_menu_id, week_number) DO UPDATE
		SET title = EXCLUDED.title
		RETURNING id`

	err := q.QueryRow(ctx, query,
		week.MonthlyMenuID,
		week.WeekNumber,
		nullableString(week.Title),
	).Scan(&week.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly menu: %w", err)
	}

	return nil
}

func (r *weeklyMenuRepository) ListByMonthlyMenu(ctx context.Context, monthlyMenuID uuid.UUID) ([]*models.WeeklyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, monthly_menu_id, week_number, title
		FROM weekly_menus
		WHERE monthly_menu_id = $1
		ORDER BY week_number`

	rows, err := q.Query(ctx, query, monthlyMenuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly menus: %w", err)
	}
	defer rows.Close()

	var weeks []*models.WeeklyMenu
	for rows.Next() {
		var w models.WeeklyMenu
		var title *string
		if err := rows.Scan(&w.ID, &w.MonthlyMenuID, &w.WeekNumber, &title); err != nil {
			return nil, fmt.Errorf("failed to scan weekly menu: %w", err)
		}
		if title != nil {
			w.Title = *title
		}
		weeks = append(weeks, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly menus: %w", err)
	}

	return weeks, nil
}

func (r *weeklyMenuRepository) DeleteByMonthlyMenu(ctx context.Context, monthlyMenuID uuid.UUID) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `DELETE FROM weekly_menus WHERE monthly_menu_id = $1`

	if _, err := q.Exec(ctx, query, monthlyMenuID); err != nil {
		return fmt.Errorf("failed to delete weekly menus: %w", err)
	}

	return nil
}
