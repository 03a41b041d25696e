package commerce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"marketplace/internal/domain"
	catalogModels "marketplace/internal/domain/models/catalog"
	commerceRepo "marketplace/internal/domain/repositories/commerce"
	catalogSvc "marketplace/internal/domain/services/catalog"
	commerceSvc "marketplace/internal/domain/services/commerce"
)

// deliveryService implements the DeliveryService interface
type deliveryService struct {
	entitlement  commerceSvc.EntitlementService
	hierarchy    catalogSvc.HierarchyResolver
	purchaseRepo commerceRepo.PurchaseRepository
	logger       *slog.Logger
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	entitlement commerceSvc.EntitlementService,
	hierarchy catalogSvc.HierarchyResolver,
	purchaseRepo commerceRepo.PurchaseRepository,
	logger *slog.Logger,
) commerceSvc.DeliveryService {
	return &deliveryService{
		entitlement:  entitlement,
		hierarchy:    hierarchy,
		purchaseRepo: purchaseRepo,
		logger:       logger,
	}
}

func (s *deliveryService) ResolveAsset(ctx context.Context, userID, assetID string) (*commerceSvc.Delivery, error) {
	node, err := s.authorize(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if node.Kind != catalogModels.NodeLeaf {
		return nil, fmt.Errorf("%w: %s is a folder", domain.ErrValidation, assetID)
	}

	s.logger.Info("asset delivered", "user_id", userID, "asset_id", assetID)

	d := toDelivery(node.Asset)
	return &d, nil
}

// ResolveFolder lists every leaf below an entitled folder. The folder grant
// covers its whole live subtree, so leaves are not checked one by one.
func (s *deliveryService) ResolveFolder(ctx context.Context, userID, folderID string) (*commerceSvc.FolderDelivery, error) {
	node, err := s.authorize(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if node.Kind != catalogModels.NodeFolder {
		return nil, fmt.Errorf("%w: %s is not a folder", domain.ErrValidation, folderID)
	}

	result := &commerceSvc.FolderDelivery{
		FolderID: node.Folder.ID,
		Name:     node.Folder.Name,
		Assets:   []commerceSvc.Delivery{},
	}
	for leaf, err := range s.hierarchy.DescendantLeaves(ctx, folderID) {
		if err != nil {
			return nil, err
		}
		result.Assets = append(result.Assets, toDelivery(&leaf))
	}

	s.logger.Info("folder delivered",
		"user_id", userID,
		"folder_id", folderID,
		"asset_count", len(result.Assets),
	)

	return result, nil
}

// authorize checks the entitlement first, so a caller without a grant
// learns nothing about whether the node still exists.
func (s *deliveryService) authorize(ctx context.Context, userID, nodeID string) (*catalogModels.Node, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.ValidateNodeID(nodeID); err != nil {
		return nil, err
	}

	allowed, err := s.entitlement.HasAccess(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrForbidden)
	}

	node, err := s.hierarchy.ResolveNode(ctx, nodeID)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	unavailable := &domain.UnavailableError{NodeID: nodeID}
	item, findErr := s.purchaseRepo.FindItem(ctx, userID, nodeID)
	switch {
	case findErr == nil:
		unavailable.Title = item.Title
	case !errors.Is(findErr, domain.ErrNotFound):
		s.logger.Warn("purchase snapshot lookup failed", "node_id", nodeID, "error", findErr)
	}
	return nil, unavailable
}

func toDelivery(a *catalogModels.Asset) commerceSvc.Delivery {
	return commerceSvc.Delivery{
		AssetID:       a.ID,
		MediaCategory: a.MediaCategory,
		Title:         a.Title,
		PreviewURL:    a.PreviewURL,
		DownloadURL:   a.DownloadURL,
		QRPayload:     a.QRPayload,
	}
}
