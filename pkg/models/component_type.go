package models

import "github.com/google/uuid"

// GenericComponentTypeName is the dictionary entry used when a block row
// carries no usable label.
const GenericComponentTypeName = "GENÉRICO"

// ComponentType is a shared dictionary entry for block-row labels
// ("BEBIDA CALIENTE", "PLATO DE FONDO", ...). Names are globally unique
// and entries are never deleted, so historical components always resolve.
type ComponentType struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
}
