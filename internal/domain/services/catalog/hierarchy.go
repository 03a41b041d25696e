package catalog

import (
	"context"
	"iter"

	"marketplace/internal/domain/models/catalog"
)

// HierarchyResolver walks category hierarchies stored in the catalog
type HierarchyResolver interface {
	// ResolveNode finds a leaf or folder by id (domain.ErrNotFound when neither exists)
	ResolveNode(ctx context.Context, id string) (*catalog.Node, error)

	// ResolveNodes resolves many ids with batched reads; missing ids are absent from the map
	ResolveNodes(ctx context.Context, ids []string) (map[string]*catalog.Node, error)

	// Ancestors returns the folder chain of a node, nearest first, ending at its root
	Ancestors(ctx context.Context, nodeID string) ([]catalog.Folder, error)

	// AncestorIDs returns the chain ids of a resolved node, including the
	// dangling parent id of an orphaned chain
	AncestorIDs(ctx context.Context, node *catalog.Node) ([]string, error)

	// DescendantLeaves lazily yields every leaf below a folder. Each range
	// starts a fresh walk.
	DescendantLeaves(ctx context.Context, folderID string) iter.Seq2[catalog.Asset, error]

	// Snapshot loads every folder of a category into an in-memory arena
	Snapshot(ctx context.Context, category catalog.MediaCategory) (*catalog.Tree, error)
}
