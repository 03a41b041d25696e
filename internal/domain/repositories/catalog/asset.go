package catalog

import (
	"context"

	"marketplace/internal/domain/models/catalog"
)

// AssetRepository defines read access to leaf assets
type AssetRepository interface {
	// Create inserts an asset and fills in its generated ID and timestamps
	Create(ctx context.Context, asset *catalog.Asset) error

	// GetByID retrieves an asset by ID (domain.ErrNotFound when absent)
	GetByID(ctx context.Context, id string) (*catalog.Asset, error)

	// GetByIDs retrieves the assets that exist among ids; missing ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]catalog.Asset, error)

	// ListByFolder lists the assets directly inside a folder
	ListByFolder(ctx context.Context, folderID string) ([]catalog.Asset, error)

	// ListByCategory retrieves all assets of a category
	ListByCategory(ctx context.Context, category catalog.MediaCategory) ([]catalog.Asset, error)
}
