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

// MonthlyMenuRepository provides data access for monthly menu roots.
type MonthlyMenuRepository interface {
	// Upsert inserts the month or, when (year, month) already exists,
	// refreshes its status and source filename. The model is populated
	// with the persisted row.
	Upsert(ctx context.Context, menu *models.MonthlyMenu) error

	// GetByID returns a monthly menu by ID, or nil if not found.
	GetByID(ctx context.Context, menuID uuid.UUID) (*models.MonthlyMenu, error)

	// FindByYearMonth returns the menu for (year, month), or nil if not found.
	FindByYearMonth(ctx context.Context, year, month int) (*models.MonthlyMenu, error)

	// SetStatus updates the lifecycle status of a monthly menu.
	SetStatus(ctx context.Context, menuID uuid.UUID, status string) error
}

type monthlyMenuRepository struct{}

// NewMonthlyMenuRepository creates a new MonthlyMenuRepository.
func NewMonthlyMenuRepository() MonthlyMenuRepository {
	return &monthlyMenuRepository{}
}

var _ MonthlyMenuRepository = (*monthlyMenuRepository)(nil)

func (r *monthlyMenuRepository) Upsert(ctx context.Context, menu *models.MonthlyMenu) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO monthly_menus (year, month, status, source_filename, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (year, month) DO UPDATE
		SET status = EXCLUDED.status,
		    source_filename = EXCLUDED.source_filename,
		    updated_at = now()
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		menu.Year,
		menu.Month,
		menu.Status,
		nullableString(menu.SourceFilename),
	).Scan(&menu.ID, &menu.CreatedAt, &menu.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly menu: %w", err)
	}

	return nil
}

func (r *monthlyMenuRepository) GetByID(ctx context.Context, menuID uuid.UUID) (*models.MonthlyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, year, month, status, source_filename, created_at, updated_at
		FROM monthly_menus
		WHERE id = $1`

	return scanMonthlyMenu(q.QueryRow(ctx, query, menuID))
}

func (r *monthlyMenuRepository) FindByYearMonth(ctx context.Context, year, month int) (*models.MonthlyMenu, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, year, month, status, source_filename, created_at, updated_at
		FROM monthly_menus
		WHERE year = $1 AND month = $2`

	return scanMonthlyMenu(q.QueryRow(ctx, query, year, month))
}

func (r *monthlyMenuRepository) SetStatus(ctx context.Context, menuID uuid.UUID, status string) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		UPDATE monthly_menus
		SET status = $2, updated_at = now()
		WHERE id = $1`

	result, err := q.Exec(ctx, query, menuID, status)
	if err != nil {
		return fmt.Errorf("failed to update monthly menu status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("monthly menu %s: %w", menuID, apperrors.ErrNotFound)
	}

	return nil
}

func scanMonthlyMenu(row pgx.Row) (*models.MonthlyMenu, error) {
	var m models.MonthlyMenu
	var sourceFilename *string

	err := row.Scan(&m.ID, &m.Year, &m.Month, &m.Status, &sourceFilename, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan monthly menu: %w", err)
	}

	if sourceFilename != nil {
		m.SourceFilename = *sourceFilename
	}
	return &m, nil
}

// nullableString converts "" to NULL for optional text columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
