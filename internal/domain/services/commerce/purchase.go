package commerce

import (
	"context"

	"marketplace/internal/domain/models/catalog"
	"marketplace/internal/domain/models/commerce"
)

// PurchaseService records confirmed checkouts and serves a user's library
type PurchaseService interface {
	// Record commits a confirmed payment. Replaying the same payment
	// reference with the same items returns the original purchase.
	Record(ctx context.Context, req *RecordRequest) (*RecordResult, error)

	// GetPurchase retrieves one of the user's purchases
	GetPurchase(ctx context.Context, userID, purchaseID string) (*commerce.Purchase, error)

	// ListPurchases lists the user's purchases, newest first
	ListPurchases(ctx context.Context, userID string) ([]commerce.Purchase, error)
}

// RecordRequest is the confirmed checkout handed over by the payment flow
type RecordRequest struct {
	UserID      string        `json:"-"`
	PaymentRef  string        `json:"payment_ref"`
	Items       []ItemRequest `json:"items"`
	TotalAmount *int64        `json:"total_amount,omitempty"` // charged amount; defaults to the sum of item prices
}

// ItemRequest names one catalog node being bought
type ItemRequest struct {
	Kind     catalog.NodeKind `json:"kind"`
	TargetID string           `json:"target_id"`
}

// RecordResult wraps the committed purchase
type RecordResult struct {
	Purchase *commerce.Purchase
	Replayed bool // true when the payment reference had already been recorded
}
