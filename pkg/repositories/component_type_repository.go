package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// ComponentTypeRepository provides data access for the shared dictionary
// of block-row labels. Entries are append-only.
type ComponentTypeRepository interface {
	// GetByName returns the entry with the given name, or nil if not found.
	GetByName(ctx context.Context, name string) (*models.ComponentType, error)

	// GetOrCreate returns the entry for the name, inserting it with the
	// next display order when it does not exist yet. Safe under
	// concurrent ingestion of the same name.
	GetOrCreate(ctx context.Context, name string) (*models.ComponentType, error)

	// ListAll returns the whole dictionary ordered by display order.
	ListAll(ctx context.Context) ([]*models.ComponentType, error)
}

type componentTypeRepository struct{}

// NewComponentTypeRepository creates a new ComponentTypeRepository.
func NewComponentTypeRepository() ComponentTypeRepository {
	return &componentTypeRepository{}
}

var _ ComponentTypeRepository = (*componentTypeRepository)(nil)

func (r *componentTypeRepository) GetByName(ctx context.Context, name string) (*models.ComponentType, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, component_name, display_order
		FROM component_types
		WHERE component_name = $1`

	var ct models.ComponentType
	err := q.QueryRow(ctx, query, name).Scan(&ct.ID, &ct.Name, &ct.DisplayOrder)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan component type: %w", err)
	}

	return &ct, nil
}

func (r *componentTypeRepository) GetOrCreate(ctx context.Context, name string) (*models.ComponentType, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	// The display order is assigned inside the insert so two concurrent
	// ingests cannot both read the same max. A lost conflict falls
	// through to the re-fetch below.
	query := `
		INSERT INTO component_types (component_name, display_order)
		SELECT $1, COALESCE(MAX(display_order), 0) + 1 FROM component_types
		ON CONFLICT (component_name) DO NOTHING
		RETURNING id, component_name, display_order`

	var ct models.ComponentType
	err := q.QueryRow(ctx, query, name).Scan(&ct.ID, &ct.Name, &ct.DisplayOrder)
	if err == nil {
		return &ct, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to create component type: %w", err)
	}

	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("component type %q vanished after conflicting insert", name)
	}
	return existing, nil
}

func (r *componentTypeRepository) ListAll(ctx context.Context) ([]*models.ComponentType, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no database querier in context")
	}

	query := `
		SELECT id, component_name, display_order
		FROM component_types
		ORDER BY display_order`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list component types: %w", err)
	}
	defer rows.Close()

	var types []*models.ComponentType
	for rows.Next() {
		var ct models.ComponentType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan component type: %w", err)
		}
		types = append(types, &ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating component types: %w", err)
	}

	return types, nil
}
