package commerce

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"marketplace/internal/domain"
	catalogModels "marketplace/internal/domain/models/catalog"
	models "marketplace/internal/domain/models/commerce"
	commerceRepo "marketplace/internal/domain/repositories/commerce"
	catalogSvc "marketplace/internal/domain/services/catalog"
	commerceSvc "marketplace/internal/domain/services/commerce"

	"golang.org/x/sync/errgroup"
)

// DefaultBulkConcurrency bounds parallel decisions when no limit is configured
const DefaultBulkConcurrency = 8

// entitlementService implements the EntitlementService interface
type entitlementService struct {
	purchaseRepo commerceRepo.PurchaseRepository
	hierarchy    catalogSvc.HierarchyResolver
	concurrency  int
	logger       *slog.Logger
}

// NewEntitlementService creates a new entitlement service.
// concurrency bounds the parallel per-node decisions of HasAccessBulk.
func NewEntitlementService(
	purchaseRepo commerceRepo.PurchaseRepository,
	hierarchy catalogSvc.HierarchyResolver,
	concurrency int,
	logger *slog.Logger,
) commerceSvc.EntitlementService {
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}
	return &entitlementService{
		purchaseRepo: purchaseRepo,
		hierarchy:    hierarchy,
		concurrency:  concurrency,
		logger:       logger,
	}
}

func (s *entitlementService) HasAccess(ctx context.Context, userID, nodeID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if err := domain.ValidateNodeID(nodeID); err != nil {
		return false, err
	}

	ownership, err := s.ownership(ctx, userID)
	if err != nil {
		s.logFailure(userID, nodeID, err)
		return false, err
	}
	if ownership.Empty() {
		s.logDenied(userID, nodeID)
		return false, nil
	}

	node, err := s.hierarchy.ResolveNode(ctx, nodeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.logDecision(userID, nodeID, ownership.HoldsTarget(nodeID)), nil
		}
		s.logFailure(userID, nodeID, err)
		return false, err
	}

	co := ownership.Category(node.Category())
	if node.Kind == catalogModels.NodeLeaf && co.HasLeaf(node.ID()) {
		return s.logDecision(userID, nodeID, true), nil
	}
	if len(co.Folders) == 0 {
		return s.logDecision(userID, nodeID, false), nil
	}

	chain, err := s.hierarchy.AncestorIDs(ctx, node)
	if err != nil {
		s.logFailure(userID, nodeID, err)
		return false, err
	}

	return s.logDecision(userID, nodeID, co.HasAnyFolder(chain)), nil
}

// HasAccessBulk reads the ledger once, resolves nodes in one batch and loads
// each touched category once. Per-node decisions then run in parallel
// against those in-memory snapshots.
func (s *entitlementService) HasAccessBulk(ctx context.Context, userID string, nodeIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		result[id] = false
	}
	if userID == "" {
		return result, nil
	}
	if err := domain.ValidateNodeIDs(nodeIDs); err != nil {
		return nil, err
	}

	ownership, err := s.ownership(ctx, userID)
	if err != nil {
		s.logFailure(userID, "", err)
		return nil, err
	}
	if ownership.Empty() {
		return result, nil
	}

	nodes, err := s.hierarchy.ResolveNodes(ctx, nodeIDs)
	if err != nil {
		s.logFailure(userID, "", err)
		return nil, err
	}

	trees := make(map[catalogModels.MediaCategory]*catalogModels.Tree)
	for _, node := range nodes {
		category := node.Category()
		if _, loaded := trees[category]; loaded {
			continue
		}
		if len(ownership.Category(category).Folders) == 0 {
			continue
		}
		tree, err := s.hierarchy.Snapshot(ctx, category)
		if err != nil {
			s.logFailure(userID, "", err)
			return nil, err
		}
		trees[category] = tree
	}

	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var allowed bool
			node, ok := nodes[id]
			if !ok {
				allowed = ownership.HoldsTarget(id)
			} else {
				allowed = decide(ownership, node, trees[node.Category()])
			}

			mu.Lock()
			result[id] = allowed
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logFailure(userID, "", err)
		return nil, err
	}

	s.logger.Debug("bulk access resolved",
		"user_id", userID,
		"node_count", len(result),
		"category_count", len(trees),
	)

	return result, nil
}

func (s *entitlementService) ownership(ctx context.Context, userID string) (*models.Ownership, error) {
	grants, err := s.purchaseRepo.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewOwnership(userID, grants), nil
}

// decide applies the leaf and folder rules against a category snapshot.
// tree is nil when the user owns no folder in the node's category.
func decide(ownership *models.Ownership, node *catalogModels.Node, tree *catalogModels.Tree) bool {
	co := ownership.Category(node.Category())
	if node.Kind == catalogModels.NodeLeaf && co.HasLeaf(node.ID()) {
		return true
	}
	if tree == nil {
		return false
	}
	return co.HasAnyFolder(tree.AncestorIDs(node.ChainStart()))
}

func (s *entitlementService) logDecision(userID, nodeID string, allowed bool) bool {
	if !allowed {
		s.logDenied(userID, nodeID)
	}
	return allowed
}

func (s *entitlementService) logDenied(userID, nodeID string) {
	s.logger.Debug("access denied", "user_id", userID, "node_id", nodeID)
}

func (s *entitlementService) logFailure(userID, nodeID string, err error) {
	s.logger.Error("entitlement check failed",
		"user_id", userID,
		"node_id", nodeID,
		"error", err,
	)
}
