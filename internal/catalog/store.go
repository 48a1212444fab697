// Package catalog talks to the amenity catalog the parser publishes into.
package catalog

import (
	"context"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// Store is the record sink consumed by the upload stage and the bulk-clear
// utility. Implementations report failures as *common.StoreError; a
// name+address pair that already exists is a conflict.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, rec entity.AmenityRecord) (string, error)
	Exists(ctx context.Context, name, address string) (bool, error)
	List(ctx context.Context, filter entity.CatalogFilter) ([]entity.CatalogObject, error)
	Delete(ctx context.Context, id string) error
}
