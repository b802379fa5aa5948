package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// MenuChangeRepository provides data access for menu change requests.
type MenuChangeRepository interface {
	// Create inserts a change request in its initial status.
	Create(ctx context.Context, change *models.MenuChangeRequest) error

	// GetByID returns a change request by ID, or nil if not found.
	GetByID(ctx context.Context, changeID uuid.UUID) (*models.MenuChangeRequest, error)

	// GetByIDForUpdate returns a change request with its row locked.
	// Must run inside a transaction; concurrent reviewers serialize here.
	GetByIDForUpdate(ctx context.Context, changeID uuid.UUID) (*models.MenuChangeRequest, error)

	// UpdateDecision persists the decision fields of a reviewed request.
	UpdateDecision(ctx context.Context, change *models.MenuChangeRequest) error

	// ListByDateRange returns requests whose day falls in [from, to),
	// newest first.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.MenuChangeRequest, error)

	// ListByStatus returns requests in a given status, newest first.
	ListByStatus(ctx context.Context, status string, limit int) ([]*models.MenuChangeRequest, error)
}

type menuChangeRepository struct{}

// NewMenuChangeRepository creates a new MenuChangeRepository.
func NewMenuChangeRepository() MenuChangeRepository {
	return &menuChangeRepository{}
}

var _ MenuChangeRepository = (*menuChangeRepository)(nil)

const menuChangeColumns = `id, daily_menu_id, day_date, meal_type, old_value, new_value, reason,
	       status, requested_by, decided_by, decided_at, notes_from_decider, batch_id,
	       created_at, updated_at`

func (r *menuChangeRepository) Create(ctx context.Context, change *models.MenuChangeRequest) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		INSERT INTO menu_change_requests (
			daily_menu_id, day_date, meal_type, old_value, new_value, reason,
			status, requested_by, batch_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		change.DailyMenuID,
		change.DayDate,
		change.MealType,
		change.OldValue,
		change.NewValue,
		change.Reason,
		change.Status,
		change.RequestedBy,
		change.BatchID,
	).Scan(&change.ID, &change.CreatedAt, &change.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create change request: %w", err)
	}

	return nil
}

func (r *menuChangeRepository) GetByID(ctx context.Context, changeID uuid.UUID) (*models.MenuChangeRequest, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `SELECT ` + menuChangeColumns + ` FROM menu_change_requests WHERE id = $1`
	return scanMenuChange(q.QueryRow(ctx, query, changeID))
}

func (r *menuChangeRepository) GetByIDForUpdate(ctx context.Context, changeID uuid.UUID) (*models.MenuChangeRequest, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `SELECT ` + menuChangeColumns + ` FROM menu_change_requests WHERE id = $1 FOR UPDATE`
	return scanMenuChange(q.QueryRow(ctx, query, changeID))
}

func (r *menuChangeRepository) UpdateDecision(ctx context.Context, change *models.MenuChangeRequest) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no database querier in context")
	}

	query := `
		UPDATE menu_change_requests
		SET status = $2, decided_by = $3, decided_at = $4, notes_from_decider = $5, updated_at = now()
		WHERE id = $1`

	result, err := q.Exec(ctx, query,
		change.ID,
		change.Status,
		change.DecidedBy,
		change.DecidedAt,
		change.NotesFromDecider,
	)
	if err != nil {
		return fmt.Errorf("failed to update change decision: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("change request %s: %w", change.ID, apperrors.ErrNotFound)
	}

	return nil
}

func (r *menuChangeRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.MenuChangeRequest, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT ` + menuChangeColumns + `
		FROM menu_change_requests
		WHERE day_date >= $1 AND day_date < $2
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}
	defer rows.Close()

	return scanMenuChanges(rows)
}

func (r *menuChangeRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*models.MenuChangeRequest, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT ` + menuChangeColumns + `
		FROM menu_change_requests
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests by status: %w", err)
	}
	defer rows.Close()

	return scanMenuChanges(rows)
}

func scanMenuChanges(rows pgx.Rows) ([]*models.MenuChangeRequest, error) {
	var changes []*models.MenuChangeRequest
	for rows.Next() {
		change, err := scanMenuChangeFields(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change requests: %w", err)
	}

	return changes, nil
}

func scanMenuChange(row pgx.Row) (*models.MenuChangeRequest, error) {
	change, err := scanMenuChangeFields(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return change, nil
}

func scanMenuChangeFields(row pgx.Row) (*models.MenuChangeRequest, error) {
	var c models.MenuChangeRequest

	err := row.Scan(
		&c.ID,
		&c.DailyMenuID,
		&c.DayDate,
		&c.MealType,
		&c.OldValue,
		&c.NewValue,
		&c.Reason,
		&c.Status,
		&c.RequestedBy,
		&c.DecidedBy,
		&c.DecidedAt,
		&c.NotesFromDecider,
		&c.BatchID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan change request: %w", err)
	}

	return &c, nil
}
