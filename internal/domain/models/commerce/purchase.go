package commerce

import (
	"slices"
	"time"

	"marketplace/internal/domain/models/catalog"
)

// Purchase is an immutable record of a confirmed checkout.
type Purchase struct {
	ID              string         `json:"id" db:"id"`
	UserID          string         `json:"user_id" db:"user_id"`
	PaymentRef      string         `json:"payment_ref" db:"payment_ref"` // unique idempotency key
	Items           []PurchaseItem `json:"items"`
	TotalAmount     int64          `json:"total_amount" db:"total_amount"`
	DiscountApplied int64          `json:"discount_applied" db:"discount_applied"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// PurchaseItem snapshots what was bought. Display fields are captured at
// purchase time and are not refreshed from the catalog afterwards.
type PurchaseItem struct {
	Kind           catalog.NodeKind      `json:"kind" db:"kind"`
	TargetID       string                `json:"target_id" db:"target_id"`
	MediaCategory  catalog.MediaCategory `json:"media_category" db:"media_category"`
	PricePaid      int64                 `json:"price_paid" db:"price_paid"`
	Title          string                `json:"title" db:"title"`
	PreviewURL     string                `json:"preview_url,omitempty" db:"preview_url"`
	DownloadURL    string                `json:"-" db:"download_url"`
	QRPayload      string                `json:"-" db:"qr_payload"`
	CoveredLeafIDs []string              `json:"covered_leaf_ids,omitempty" db:"covered_leaf_ids"` // folder items only
}

// ItemKey identifies a purchase line independent of its snapshot
type ItemKey struct {
	Kind     catalog.NodeKind `json:"kind"`
	TargetID string           `json:"target_id"`
}

func (k ItemKey) String() string {
	return string(k.Kind) + ":" + k.TargetID
}

// ItemKeys returns the sorted keys of the purchase lines
func (p *Purchase) ItemKeys() []ItemKey {
	keys := make([]ItemKey, 0, len(p.Items))
	for _, item := range p.Items {
		keys = append(keys, ItemKey{Kind: item.Kind, TargetID: item.TargetID})
	}
	SortItemKeys(keys)
	return keys
}

// SortItemKeys orders keys by kind, then target id
func SortItemKeys(keys []ItemKey) {
	slices.SortFunc(keys, func(a, b ItemKey) int {
		if a.Kind != b.Kind {
			if a.Kind < b.Kind {
				return -1
			}
			return 1
		}
		switch {
		case a.TargetID < b.TargetID:
			return -1
		case a.TargetID > b.TargetID:
			return 1
		}
		return 0
	})
}

// SameItems reports whether both key sets contain the same lines regardless of order
func SameItems(a, b []ItemKey) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	SortItemKeys(x)
	SortItemKeys(y)
	return slices.Equal(x, y)
}
