package catalog

import (
	"context"

	"marketplace/internal/domain/models/catalog"
)

// FolderRepository defines read access to catalog folders.
// Catalog writes belong to admin tooling; Create exists for seeding and tests.
type FolderRepository interface {
	// Create inserts a folder and fills in its generated ID and timestamps
	Create(ctx context.Context, folder *catalog.Folder) error

	// GetByID retrieves a folder by ID (domain.ErrNotFound when absent)
	GetByID(ctx context.Context, id string) (*catalog.Folder, error)

	// GetByIDs retrieves the folders that exist among ids; missing ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]catalog.Folder, error)

	// ListChildren lists immediate child folders
	ListChildren(ctx context.Context, folderID string) ([]catalog.Folder, error)

	// ListByCategory retrieves all folders of a category (flat list)
	ListByCategory(ctx context.Context, category catalog.MediaCategory) ([]catalog.Folder, error)

	// GetAncestors returns the live chain from id towards its root, id first.
	// The chain ends early at a missing parent. Empty when id does not exist.
	GetAncestors(ctx context.Context, id string) ([]catalog.Folder, error)
}
