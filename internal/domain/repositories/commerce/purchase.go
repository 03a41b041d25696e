package commerce

import (
	"context"

	"marketplace/internal/domain/models/commerce"
)

// PurchaseRepository is the append-only purchase ledger
type PurchaseRepository interface {
	// Create inserts a purchase with its items. Returns an error wrapping
	// domain.ErrConflict when the payment reference is already taken.
	Create(ctx context.Context, purchase *commerce.Purchase) error

	// GetByID retrieves a purchase owned by userID
	GetByID(ctx context.Context, id, userID string) (*commerce.Purchase, error)

	// GetByPaymentRef retrieves the purchase bound to a payment reference
	GetByPaymentRef(ctx context.Context, paymentRef string) (*commerce.Purchase, error)

	// ListByUser lists a user's purchases, newest first
	ListByUser(ctx context.Context, userID string) ([]commerce.Purchase, error)

	// ListGrants aggregates every distinct purchased target of a user in one read
	ListGrants(ctx context.Context, userID string) ([]commerce.Grant, error)

	// FindItem returns the most recent purchase line of userID for a target, if any
	FindItem(ctx context.Context, userID, targetID string) (*commerce.PurchaseItem, error)
}
