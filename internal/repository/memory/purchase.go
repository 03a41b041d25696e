package memory

import (
	"context"
	"fmt"
	"slices"

	"marketplace/internal/domain"
	"marketplace/internal/domain/models/commerce"
)

type purchaseRepository struct {
	s *Store
}

func (r *purchaseRepository) Create(_ context.Context, purchase *commerce.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.byRef[purchase.PaymentRef]; exists {
		return fmt.Errorf("payment reference %q: %w", purchase.PaymentRef, domain.ErrConflict)
	}

	p := clonePurchase(purchase)
	r.s.purchases = append(r.s.purchases, p)
	r.s.byRef[p.PaymentRef] = p
	return nil
}

func (r *purchaseRepository) GetByID(_ context.Context, id, userID string) (*commerce.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.purchases {
		if p.ID == id && p.UserID == userID {
			return clonePurchase(p), nil
		}
	}
	return nil, fmt.Errorf("purchase %s: %w", id, domain.ErrNotFound)
}

func (r *purchaseRepository) GetByPaymentRef(_ context.Context, paymentRef string) (*commerce.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.byRef[paymentRef]
	if !ok {
		return nil, fmt.Errorf("purchase with payment reference %q: %w", paymentRef, domain.ErrNotFound)
	}
	return clonePurchase(p), nil
}

func (r *purchaseRepository) ListByUser(_ context.Context, userID string) ([]commerce.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]commerce.Purchase, 0)
	for i := len(r.s.purchases) - 1; i >= 0; i-- {
		if p := r.s.purchases[i]; p.UserID == userID {
			result = append(result, *clonePurchase(p))
		}
	}
	return result, nil
}

func (r *purchaseRepository) ListGrants(_ context.Context, userID string) ([]commerce.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type grantKey struct {
		item     commerce.ItemKey
		category string
	}
	index := make(map[grantKey]int)
	grants := make([]commerce.Grant, 0)

	for _, p := range r.s.purchases {
		if p.UserID != userID {
			continue
		}
		for _, item := range p.Items {
			key := grantKey{
				item:     commerce.ItemKey{Kind: item.Kind, TargetID: item.TargetID},
				category: string(item.MediaCategory),
			}
			i, ok := index[key]
			if !ok {
				i = len(grants)
				index[key] = i
				grants = append(grants, commerce.Grant{
					Kind:          item.Kind,
					TargetID:      item.TargetID,
					MediaCategory: item.MediaCategory,
				})
			}
			for _, leafID := range item.CoveredLeafIDs {
				if !slices.Contains(grants[i].CoveredLeafIDs, leafID) {
					grants[i].CoveredLeafIDs = append(grants[i].CoveredLeafIDs, leafID)
				}
			}
		}
	}
	return grants, nil
}

func (r *purchaseRepository) FindItem(_ context.Context, userID, targetID string) (*commerce.PurchaseItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for i := len(r.s.purchases) - 1; i >= 0; i-- {
		p := r.s.purchases[i]
		if p.UserID != userID {
			continue
		}
		for _, item := range p.Items {
			if item.TargetID == targetID {
				out := item
				out.CoveredLeafIDs = slices.Clone(item.CoveredLeafIDs)
				return &out, nil
			}
		}
	}
	return nil, fmt.Errorf("purchase item for %s: %w", targetID, domain.ErrNotFound)
}

func clonePurchase(p *commerce.Purchase) *commerce.Purchase {
	out := *p
	out.Items = make([]commerce.PurchaseItem, len(p.Items))
	for i, item := range p.Items {
		out.Items[i] = item
		out.Items[i].CoveredLeafIDs = slices.Clone(item.CoveredLeafIDs)
	}
	return &out
}
