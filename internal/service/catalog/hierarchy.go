package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"marketplace/internal/domain"
	models "marketplace/internal/domain/models/catalog"
	catalogRepo "marketplace/internal/domain/repositories/catalog"
	catalogSvc "marketplace/internal/domain/services/catalog"
)

// hierarchyResolver implements the HierarchyResolver interface
type hierarchyResolver struct {
	folderRepo catalogRepo.FolderRepository
	assetRepo  catalogRepo.AssetRepository
	logger     *slog.Logger
}

// NewHierarchyResolver creates a new hierarchy resolver
func NewHierarchyResolver(
	folderRepo catalogRepo.FolderRepository,
	assetRepo catalogRepo.AssetRepository,
	logger *slog.Logger,
) catalogSvc.HierarchyResolver {
	return &hierarchyResolver{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		logger:     logger,
	}
}

// ResolveNode looks the id up as a leaf first, then as a folder
func (r *hierarchyResolver) ResolveNode(ctx context.Context, id string) (*models.Node, error) {
	if err := domain.ValidateNodeID(id); err != nil {
		return nil, err
	}

	asset, err := r.assetRepo.GetByID(ctx, id)
	if err == nil {
		return models.AssetNode(asset), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	folder, err := r.folderRepo.GetByID(ctx, id)
	if err == nil {
		return models.FolderNode(folder), nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil, err
}

// ResolveNodes resolves ids with one asset read and one folder read
func (r *hierarchyResolver) ResolveNodes(ctx context.Context, ids []string) (map[string]*models.Node, error) {
	if err := domain.ValidateNodeIDs(ids); err != nil {
		return nil, err
	}

	nodes := make(map[string]*models.Node, len(ids))

	assets, err := r.assetRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		nodes[assets[i].ID] = models.AssetNode(&assets[i])
	}

	remaining := make([]string, 0, len(ids)-len(assets))
	for _, id := range ids {
		if _, ok := nodes[id]; !ok {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return nodes, nil
	}

	folders, err := r.folderRepo.GetByIDs(ctx, remaining)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		nodes[folders[i].ID] = models.FolderNode(&folders[i])
	}

	return nodes, nil
}

func (r *hierarchyResolver) Ancestors(ctx context.Context, nodeID string) ([]models.Folder, error) {
	node, err := r.ResolveNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return r.folderRepo.GetAncestors(ctx, node.ChainStart())
}

func (r *hierarchyResolver) AncestorIDs(ctx context.Context, node *models.Node) ([]string, error) {
	start := node.ChainStart()
	chain, err := r.folderRepo.GetAncestors(ctx, start)
	if err != nil {
		return nil, err
	}
	return models.ChainIDs(start, chain), nil
}

// DescendantLeaves walks the subtree breadth-first. Folders already visited
// are skipped, so a corrupted parent link cannot loop forever.
func (r *hierarchyResolver) DescendantLeaves(ctx context.Context, folderID string) iter.Seq2[models.Asset, error] {
	return func(yield func(models.Asset, error) bool) {
		visited := map[string]struct{}{folderID: {}}
		queue := []string{folderID}

		for len(queue) > 0 {
			if err := ctx.Err(); err != nil {
				yield(models.Asset{}, err)
				return
			}

			current := queue[0]
			queue = queue[1:]

			assets, err := r.assetRepo.ListByFolder(ctx, current)
			if err != nil {
				yield(models.Asset{}, fmt.Errorf("list assets of folder %s: %w", current, err))
				return
			}
			for _, a := range assets {
				if !yield(a, nil) {
					return
				}
			}

			children, err := r.folderRepo.ListChildren(ctx, current)
			if err != nil {
				yield(models.Asset{}, fmt.Errorf("list children of folder %s: %w", current, err))
				return
			}
			for _, child := range children {
				if _, seen := visited[child.ID]; seen {
					r.logger.Warn("folder cycle detected", "folder_id", child.ID, "parent_id", current)
					continue
				}
				visited[child.ID] = struct{}{}
				queue = append(queue, child.ID)
			}
		}
	}
}

func (r *hierarchyResolver) Snapshot(ctx context.Context, category models.MediaCategory) (*models.Tree, error) {
	folders, err := r.folderRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return models.NewTree(category, folders), nil
}
