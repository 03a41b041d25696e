package handler

import (
	"log/slog"
	"net/http"

	"marketplace/internal/domain"
	commerceSvc "marketplace/internal/domain/services/commerce"
	"marketplace/internal/httputil"
)

// PurchaseHandler handles purchase HTTP requests
type PurchaseHandler struct {
	purchases commerceSvc.PurchaseService
	logger    *slog.Logger
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchases commerceSvc.PurchaseService, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		logger:    logger,
	}
}

// RecordPurchase commits a confirmed payment.
// Returns 201 when recorded, 200 with the original purchase on a replay,
// 409 when the payment reference is bound to a different purchase.
// POST /api/purchases
func (h *PurchaseHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		handleError(w, domain.ErrUnauthorized)
		return
	}

	var req commerceSvc.RecordRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	result, err := h.purchases.Record(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	httputil.RespondJSON(w, status, result.Purchase)
}

// ListPurchases lists the caller's purchases, newest first
// GET /api/purchases
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchases.ListPurchases(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, purchases)
}

// GetPurchase retrieves one of the caller's purchases
// GET /api/purchases/{id}
func (h *PurchaseHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.purchases.GetPurchase(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, purchase)
}
