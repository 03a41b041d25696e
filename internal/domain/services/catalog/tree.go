package catalog

import (
	"context"

	"marketplace/internal/domain/models/catalog"
)

// TreeService builds browse trees annotated with price and ownership
type TreeService interface {
	// GetCategoryTree returns the nested tree of a category. userID may be
	// empty for anonymous browsing.
	GetCategoryTree(ctx context.Context, userID string, category catalog.MediaCategory) (*catalog.CategoryTree, error)
}
