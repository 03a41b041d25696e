package catalog

import (
	"context"
	"log/slog"

	"marketplace/internal/domain"
	models "marketplace/internal/domain/models/catalog"
	catalogSvc "marketplace/internal/domain/services/catalog"
)

// priceResolver implements the PriceResolver interface
type priceResolver struct {
	hierarchy catalogSvc.HierarchyResolver
	logger    *slog.Logger
}

// NewPriceResolver creates a new price resolver
func NewPriceResolver(hierarchy catalogSvc.HierarchyResolver, logger *slog.Logger) catalogSvc.PriceResolver {
	return &priceResolver{
		hierarchy: hierarchy,
		logger:    logger,
	}
}

func (p *priceResolver) EffectivePrice(ctx context.Context, nodeID string) (*catalogSvc.PriceQuote, error) {
	node, err := p.hierarchy.ResolveNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return p.quote(ctx, node)
}

// PreviewSet prices each distinct node once, in request order
func (p *priceResolver) PreviewSet(ctx context.Context, nodeIDs []string) (*catalogSvc.SetQuote, error) {
	if err := domain.ValidateNodeIDs(nodeIDs); err != nil {
		return nil, err
	}

	result := &catalogSvc.SetQuote{Items: make([]catalogSvc.PriceQuote, 0, len(nodeIDs))}
	seen := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		q, err := p.EffectivePrice(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, *q)
		result.Total += q.Amount
	}

	return result, nil
}

func (p *priceResolver) quote(ctx context.Context, node *models.Node) (*catalogSvc.PriceQuote, error) {
	q := &catalogSvc.PriceQuote{
		NodeID:        node.ID(),
		Kind:          node.Kind,
		MediaCategory: node.Category(),
		Amount:        node.EffectivePrice(),
	}

	if node.Kind == models.NodeLeaf {
		q.BasePrice = node.Asset.BasePrice
		q.DiscountPrice = node.Asset.DiscountPrice
		return q, nil
	}

	q.BasePrice = node.Folder.BasePrice
	q.DiscountPrice = node.Folder.DiscountPrice
	if !node.Folder.IsPurchasable {
		return q, nil
	}

	var leafTotal int64
	var leafCount int
	for leaf, err := range p.hierarchy.DescendantLeaves(ctx, node.Folder.ID) {
		if err != nil {
			return nil, err
		}
		leafTotal += leaf.EffectivePrice()
		leafCount++
	}

	savings := leafTotal - q.Amount
	q.LeafTotal = &leafTotal
	q.LeafCount = leafCount
	q.BundleSavings = &savings

	if savings < 0 {
		q.Misconfigured = true
		p.logger.Warn("bundle priced above its leaves",
			"folder_id", node.Folder.ID,
			"bundle_price", q.Amount,
			"leaf_total", leafTotal,
		)
	}

	return q, nil
}
