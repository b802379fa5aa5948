package services

import (
	"context"
	"fmt"

	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
	"github.com/LuisRz1/pluginProvcalApp/pkg/repositories"
	"github.com/LuisRz1/pluginProvcalApp/pkg/workbook"
)

// ComponentResolver maps raw block-row labels to dictionary entries.
// Labels are normalized before lookup and unusable labels fall back to
// the generic entry, so every extracted component resolves to something.
type ComponentResolver interface {
	// Resolve returns the component type for a raw label, creating the
	// dictionary entry on first sight.
	Resolve(ctx context.Context, rawLabel string) (*models.ComponentType, error)
}

// componentResolver caches resolutions for the lifetime of one ingestion
// run. Not safe for concurrent use; create one per run.
type componentResolver struct {
	componentTypeRepo repositories.ComponentTypeRepository
	cache             map[string]*models.ComponentType
}

// NewComponentResolver creates a resolver with an empty run-scoped cache.
func NewComponentResolver(componentTypeRepo repositories.ComponentTypeRepository) ComponentResolver {
	return &componentResolver{
		componentTypeRepo: componentTypeRepo,
		cache:             make(map[string]*models.ComponentType),
	}
}

var _ ComponentResolver = (*componentResolver)(nil)

func (r *componentResolver) Resolve(ctx context.Context, rawLabel string) (*models.ComponentType, error) {
	// Sentinel labels ("-----", "##", ...) scrub to empty just like blank
	// cells and share the generic entry.
	name := workbook.NormalizeLabel(workbook.CleanText(rawLabel))
	if name == "" {
		name = models.GenericComponentTypeName
	}

	if ct, ok := r.cache[name]; ok {
		return ct, nil
	}

	ct, err := r.componentTypeRepo.GetOrCreate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve component type %q: %w", name, err)
	}

	r.cache[name] = ct
	return ct, nil
}
