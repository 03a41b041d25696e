package commerce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	catalogModels "marketplace/internal/domain/models/catalog"
	models "marketplace/internal/domain/models/commerce"
	"marketplace/internal/domain/repositories"
	commerceRepo "marketplace/internal/domain/repositories/commerce"
	catalogSvc "marketplace/internal/domain/services/catalog"
	commerceSvc "marketplace/internal/domain/services/commerce"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// purchaseService implements the PurchaseService interface
type purchaseService struct {
	purchaseRepo commerceRepo.PurchaseRepository
	hierarchy    catalogSvc.HierarchyResolver
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo commerceRepo.PurchaseRepository,
	hierarchy catalogSvc.HierarchyResolver,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) commerceSvc.PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		hierarchy:    hierarchy,
		txManager:    txManager,
		logger:       logger,
	}
}

// Record commits a confirmed checkout. The payment reference is the
// idempotency key: a replay with the same user and items returns the stored
// purchase, anything else bound to the same reference is rejected.
func (s *purchaseService) Record(ctx context.Context, req *commerceSvc.RecordRequest) (*commerceSvc.RecordResult, error) {
	if err := s.validateRecordRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	keys := make([]models.ItemKey, 0, len(req.Items))
	seen := make(map[models.ItemKey]struct{}, len(req.Items))
	for _, item := range req.Items {
		key := models.ItemKey{Kind: item.Kind, TargetID: item.TargetID}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: item %s listed twice", domain.ErrValidation, key)
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	existing, err := s.purchaseRepo.GetByPaymentRef(ctx, req.PaymentRef)
	if err == nil {
		return s.replay(req, keys, existing)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	purchase, err := s.buildPurchase(ctx, req)
	if err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.purchaseRepo.Create(txCtx, purchase)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		// Lost a race on the payment reference; judge against the winner.
		winner, getErr := s.purchaseRepo.GetByPaymentRef(ctx, req.PaymentRef)
		if getErr != nil {
			return nil, getErr
		}
		return s.replay(req, keys, winner)
	}

	s.logger.Info("purchase recorded",
		"purchase_id", purchase.ID,
		"user_id", purchase.UserID,
		"payment_ref", purchase.PaymentRef,
		"item_count", len(purchase.Items),
		"total_amount", purchase.TotalAmount,
	)

	return &commerceSvc.RecordResult{Purchase: purchase}, nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, userID, purchaseID string) (*models.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.ValidatePurchaseID(purchaseID); err != nil {
		return nil, err
	}
	return s.purchaseRepo.GetByID(ctx, purchaseID, userID)
}

func (s *purchaseService) ListPurchases(ctx context.Context, userID string) ([]models.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.purchaseRepo.ListByUser(ctx, userID)
}

// replay compares a request with the purchase already bound to its reference
func (s *purchaseService) replay(req *commerceSvc.RecordRequest, keys []models.ItemKey, existing *models.Purchase) (*commerceSvc.RecordResult, error) {
	reason := ""
	switch {
	case existing.UserID != req.UserID:
		reason = "recorded for a different user"
	case !models.SameItems(keys, existing.ItemKeys()):
		reason = "recorded with different items"
	case req.TotalAmount != nil && *req.TotalAmount != existing.TotalAmount:
		reason = "recorded with a different total"
	}

	if reason != "" {
		s.logger.Warn("payment reference reuse rejected",
			"payment_ref", req.PaymentRef,
			"existing_purchase_id", existing.ID,
			"user_id", req.UserID,
			"reason", reason,
		)
		return nil, &domain.DuplicateReferenceError{
			PaymentRef:         req.PaymentRef,
			ExistingPurchaseID: existing.ID,
			Reason:             reason,
		}
	}

	s.logger.Debug("purchase replayed", "purchase_id", existing.ID, "payment_ref", req.PaymentRef)
	return &commerceSvc.RecordResult{Purchase: existing, Replayed: true}, nil
}

// buildPurchase prices and snapshots every item from the current catalog
func (s *purchaseService) buildPurchase(ctx context.Context, req *commerceSvc.RecordRequest) (*models.Purchase, error) {
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.TargetID)
	}

	nodes, err := s.hierarchy.ResolveNodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.PurchaseItem, 0, len(req.Items))
	var sum int64
	for _, it := range req.Items {
		node, ok := nodes[it.TargetID]
		if !ok {
			return nil, fmt.Errorf("%s %s: %w", it.Kind, it.TargetID, domain.ErrNotFound)
		}
		if node.Kind != it.Kind {
			return nil, fmt.Errorf("%w: %s is a %s, not a %s", domain.ErrValidation, it.TargetID, node.Kind, it.Kind)
		}

		item := models.PurchaseItem{
			Kind:          node.Kind,
			TargetID:      node.ID(),
			MediaCategory: node.Category(),
			PricePaid:     node.EffectivePrice(),
			Title:         node.Name(),
		}

		switch node.Kind {
		case catalogModels.NodeLeaf:
			item.PreviewURL = node.Asset.PreviewURL
			item.DownloadURL = node.Asset.DownloadURL
			item.QRPayload = node.Asset.QRPayload
		case catalogModels.NodeFolder:
			if !node.Folder.IsPurchasable {
				return nil, fmt.Errorf("%w: folder %s is not sold as a bundle", domain.ErrValidation, node.Folder.ID)
			}
			covered := []string{}
			for leaf, err := range s.hierarchy.DescendantLeaves(ctx, node.Folder.ID) {
				if err != nil {
					return nil, err
				}
				covered = append(covered, leaf.ID)
			}
			item.CoveredLeafIDs = covered
		}

		sum += item.PricePaid
		items = append(items, item)
	}

	total := sum
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}

	id, err := domain.NewPurchaseID()
	if err != nil {
		return nil, err
	}

	return &models.Purchase{
		ID:              id,
		UserID:          req.UserID,
		PaymentRef:      req.PaymentRef,
		Items:           items,
		TotalAmount:     total,
		DiscountApplied: max(0, sum-total),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (s *purchaseService) validateRecordRequest(req *commerceSvc.RecordRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.PaymentRef,
			validation.Required,
			validation.Length(1, config.MaxPaymentRefLength),
		),
		validation.Field(&req.Items,
			validation.Required,
			validation.Length(1, config.MaxPurchaseItems),
			validation.Each(validation.By(validateItem)),
		),
		validation.Field(&req.TotalAmount, validation.Min(int64(0))),
	)
}

func validateItem(value interface{}) error {
	item, ok := value.(commerceSvc.ItemRequest)
	if !ok {
		return errors.New("must be a purchase item")
	}
	return validation.ValidateStruct(&item,
		validation.Field(&item.Kind,
			validation.Required,
			validation.In(catalogModels.NodeLeaf, catalogModels.NodeFolder).Error("must be leaf or folder"),
		),
		validation.Field(&item.TargetID,
			validation.Required,
			validation.By(func(v interface{}) error {
				id, _ := v.(string)
				if id == "" {
					return nil
				}
				return domain.ValidateNodeID(id)
			}),
		),
	)
}
