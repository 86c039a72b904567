// Package catalog implements the Catalog Readers: the read-only ports over
// Template, Config and Item rows. Catalog data is
// immutable from the placement engine's point of view — it is owned by an
// external content-management surface this engine never writes to — so
// every reader here returns a value type and nothing here ever mutates a
// catalog row.
package catalog

import (
	"context"
	"errors"

	"github.com/langtest/catengine/internal/model"
)

// ErrNotFound is returned by any Reader method when the requested catalog
// row does not exist, grounded on the teacher's store.ErrNotFound
// sentinel-error convention. GetItem returns inactive items as well.
var ErrNotFound = errors.New("catalog: not found")

// Reader is the port the orchestrators and selector depend on. Templates
// and Items are looked up by ID, Configs by their template's ID; ActiveItems returns the full set
// of active items belonging to a template so the selector can apply its
// own skill/answered filtering in memory.
type Reader interface {
	GetTemplate(ctx context.Context, templateID string) (model.Template, error)
	GetConfigByTemplate(ctx context.Context, templateID string) (model.Config, error)
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	ActiveItems(ctx context.Context, templateID string) ([]model.Item, error)
}
