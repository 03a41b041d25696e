package catalog

import (
	"context"

	"marketplace/internal/domain/models/catalog"
)

// PriceResolver computes current catalog prices. It never consults the ledger.
type PriceResolver interface {
	// EffectivePrice quotes a single node; purchasable folders include bundle figures
	EffectivePrice(ctx context.Context, nodeID string) (*PriceQuote, error)

	// PreviewSet quotes a set of nodes (duplicates counted once)
	PreviewSet(ctx context.Context, nodeIDs []string) (*SetQuote, error)
}

// PriceQuote is the price a user currently sees for one node
type PriceQuote struct {
	NodeID        string                `json:"node_id"`
	Kind          catalog.NodeKind      `json:"kind"`
	MediaCategory catalog.MediaCategory `json:"media_category"`
	Amount        int64                 `json:"amount"`
	BasePrice     int64                 `json:"base_price"`
	DiscountPrice *int64                `json:"discount_price,omitempty"`

	// Bundle figures, set for purchasable folders only.
	// BundleSavings may be negative; Misconfigured flags that case.
	BundleSavings *int64 `json:"bundle_savings,omitempty"`
	LeafTotal     *int64 `json:"leaf_total,omitempty"`
	LeafCount     int    `json:"leaf_count,omitempty"`
	Misconfigured bool   `json:"misconfigured,omitempty"`
}

// SetQuote is the combined price of several nodes
type SetQuote struct {
	Items []PriceQuote `json:"items"`
	Total int64        `json:"total"`
}
