package handler

import (
	"log/slog"
	"net/http"

	catalogSvc "marketplace/internal/domain/services/catalog"
	"marketplace/internal/httputil"
)

// PriceHandler handles price HTTP requests
type PriceHandler struct {
	prices catalogSvc.PriceResolver
	logger *slog.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(prices catalogSvc.PriceResolver, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{
		prices: prices,
		logger: logger,
	}
}

// GetPrice quotes one node
// GET /api/prices/{id}
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	quote, err := h.prices.EffectivePrice(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, quote)
}

// PreviewPrices quotes a set of nodes
// POST /api/prices/preview
func (h *PriceHandler) PreviewPrices(w http.ResponseWriter, r *http.Request) {
	nodeIDs, ok := parseNodeIDs(w, r)
	if !ok {
		return
	}

	quote, err := h.prices.PreviewSet(r.Context(), nodeIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, quote)
}
