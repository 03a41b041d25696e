package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"marketplace/internal/domain"
	models "marketplace/internal/domain/models/catalog"
	catalogRepo "marketplace/internal/domain/repositories/catalog"
	catalogSvc "marketplace/internal/domain/services/catalog"
	commerceSvc "marketplace/internal/domain/services/commerce"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo  catalogRepo.FolderRepository
	assetRepo   catalogRepo.AssetRepository
	entitlement commerceSvc.EntitlementService
	logger      *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo catalogRepo.FolderRepository,
	assetRepo catalogRepo.AssetRepository,
	entitlement commerceSvc.EntitlementService,
	logger *slog.Logger,
) catalogSvc.TreeService {
	return &treeService{
		folderRepo:  folderRepo,
		assetRepo:   assetRepo,
		entitlement: entitlement,
		logger:      logger,
	}
}

// GetCategoryTree builds the nested folder/asset tree of a category and marks
// owned nodes with a single bulk entitlement check. If that check fails the
// tree is still returned, with nothing owned and Degraded set.
func (s *treeService) GetCategoryTree(ctx context.Context, userID string, category models.MediaCategory) (*models.CategoryTree, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown media category %q: %w", category, domain.ErrValidation)
	}

	allFolders, err := s.folderRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	allAssets, err := s.assetRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	tree := &models.CategoryTree{
		Category: category,
		Folders:  []*models.FolderTreeNode{},
	}

	owned := map[string]bool{}
	if userID != "" && len(allFolders)+len(allAssets) > 0 {
		ids := make([]string, 0, len(allFolders)+len(allAssets))
		for _, f := range allFolders {
			ids = append(ids, f.ID)
		}
		for _, a := range allAssets {
			ids = append(ids, a.ID)
		}

		result, err := s.entitlement.HasAccessBulk(ctx, userID, ids)
		if err != nil {
			s.logger.Error("ownership unavailable, serving tree without it",
				"user_id", userID,
				"media_category", category,
				"error", err,
			)
			tree.Degraded = true
		} else {
			owned = result
		}
	}

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:            folder.ID,
			Name:          folder.Name,
			ParentID:      folder.ParentID,
			IsPurchasable: folder.IsPurchasable,
			Price:         folder.EffectivePrice(),
			Owned:         owned[folder.ID],
			CreatedAt:     folder.CreatedAt,
			Folders:       []*models.FolderTreeNode{},
			Assets:        []models.AssetTreeNode{},
		}
	}

	// Second pass: nest folders. A folder whose parent is gone is shown as a root.
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			tree.Folders = append(tree.Folders, node)
			continue
		}
		parent, exists := folderMap[*folder.ParentID]
		if !exists || *folder.ParentID == folder.ID {
			tree.Folders = append(tree.Folders, node)
			continue
		}
		parent.Folders = append(parent.Folders, node)
	}

	// Third pass: attach assets to their folders
	skipped := 0
	for _, asset := range allAssets {
		parent, exists := folderMap[asset.ParentID]
		if !exists {
			skipped++
			continue
		}
		parent.Assets = append(parent.Assets, models.AssetTreeNode{
			ID:         asset.ID,
			Title:      asset.Title,
			Price:      asset.EffectivePrice(),
			PreviewURL: asset.PreviewURL,
			Owned:      owned[asset.ID],
		})
	}

	s.logger.Debug("category tree built",
		"media_category", category,
		"folder_count", len(allFolders),
		"asset_count", len(allAssets),
		"orphan_assets", skipped,
		"degraded", tree.Degraded,
	)

	return tree, nil
}
