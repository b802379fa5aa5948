package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// DailyMenuRepository provides data access for calendar days.
type DailyMenuRepository interface {
	// ReplaceForWeek deletes every day of the week and inserts the given
	// days in one shot. Meals and components cascade with the delete, so
	// a week rebuild starts from a clean slate.
	ReplaceForWeek(ctx context.Context, weeklyMenuID uuid.UUID, days []*models.DailyMenu) error

	// GetByID returns a daily menu by ID, or nil if not found.
	GetByID(ctx context.Context, dailyMenuID uuid.UUID) (*models.DailyMenu, error)

	// FindByDate returns the day for a calendar date, or nil if not found.
	FindByDate(ctx context.Context, date time.Time) (*models.DailyMenu, error)

	// ListByWeek returns the days of a week ordered by date.
	ListByWeek(ctx context.Context, weeklyMenuID uuid.UUID) ([]*models.DailyMenu, error)

	// ListByMonthlyMenu returns every day of a month ordered by date.
	ListByMonthlyMenu(ctx context.Context, monthlyMenuID uuid.UUID) ([]*models.DailyMenu, error)
}

type dailyMenuRepository struct{}

// NewDailyMenuRepository creates a new DailyMenuRepository.
func NewDailyMenuRepository() DailyMenuRepository {
	return &dailyMenuRepository{}
}

var _ DailyMenuRepository = (*dailyMenuRepository)(nil)

const dailyMenuColumns = `id, weekly_menu_id, date, day_of_week, is_holiday, nutrition_flags, created_at, updated_at`

func (r *dailyMenuRepository) ReplaceForWeek(ctx context.Context, weeklyMenuID uuid.UUID, days []*models.DailyMenu) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	if _, err := q.Exec(ctx, `DELETE FROM daily_menus WHERE weekly_menu_id = $1`, weeklyMenuID); err != nil {
		return fmt.Errorf("failed to clear week days: %w", err)
	}

	if len(days) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_menus (weekly_menu_id, date, day_of_week, is_holiday, nutrition_flags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	batch := &pgx.Batch{}
	for _, day := range days {
		batch.Queue(query,
			weeklyMenuID,
			day.Date,
			nullableString(day.DayOfWeek),
			day.IsHoliday,
			flagsOrEmpty(day.NutritionFlags),
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range days {
		days[i].WeeklyMenuID = weeklyMenuID
		err := results.QueryRow().Scan(&days[i].ID, &days[i].CreatedAt, &days[i].UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert day %d: %w", i, err)
		}
	}

	return nil
}

func (r *dailyMenuRepository) GetByID(ctx context.Context, dailyMenuID uuid.UUID) (*models.DailyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `SELECT ` + dailyMenuColumns + ` FROM daily_menus WHERE id = $1`
	return scanDailyMenu(q.QueryRow(ctx, query, dailyMenuID))
}

func (r *dailyMenuRepository) FindByDate(ctx context.Context, date time.Time) (*models.DailyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `SELECT ` + dailyMenuColumns + ` FROM daily_menus WHERE date = $1`
	return scanDailyMenu(q.QueryRow(ctx, query, date))
}

func (r *dailyMenuRepository) ListByWeek(ctx context.Context, weeklyMenuID uuid.UUID) ([]*models.DailyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `SELECT ` + dailyMenuColumns + ` FROM daily_menus WHERE weekly_menu_id = $1 ORDER BY date`

	rows, err := q.Query(ctx, query, weeklyMenuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list week days: %w", err)
	}
	defer rows.Close()

	return scanDailyMenus(rows)
}

func (r *dailyMenuRepository) ListByMonthlyMenu(ctx context.Context, monthlyMenuID uuid.UUID) ([]*models.DailyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT d.id, d.weekly_menu_id, d.date, d.day_of_week, d.is_holiday,
		       d.nutrition_flags, d.created_at, d.updated_at
		FROM daily_menus d
		JOIN weekly_menus w ON w.id = d.weekly_menu_id
		WHERE w.monthly_menu_id = $1
		ORDER BY d.date`

	rows, err := q.Query(ctx, query, monthlyMenuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list month days: %w", err)
	}
	defer rows.Close()

	return scanDailyMenus(rows)
}

func scanDailyMenus(rows pgx.Rows) ([]*models.DailyMenu, error) {
	var days []*models.DailyMenu
	for rows.Next() {
		day, err := scanDailyMenuFields(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily menus: %w", err)
	}

	return days, nil
}

func scanDailyMenu(row pgx.Row) (*models.DailyMenu, error) {
	day, err := scanDailyMenuFields(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return day, nil
}

func scanDailyMenuFields(row pgx.Row) (*models.DailyMenu, error) {
	var d models.DailyMenu
	var dayOfWeek *string

	err := row.Scan(
		&d.ID,
		&d.WeeklyMenuID,
		&d.Date,
		&dayOfWeek,
		&d.IsHoliday,
		&d.NutritionFlags,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan daily menu: %w", err)
	}

	if dayOfWeek != nil {
		d.DayOfWeek = *dayOfWeek
	}
	return &d, nil
}

// flagsOrEmpty keeps the NOT NULL jsonb column satisfied for days with
// no flags.
func flagsOrEmpty(flags map[string]string) map[string]string {
	if flags == nil {
		return map[string]string{}
	}
	return flags
}
