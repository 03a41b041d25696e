package handler

import (
	"log/slog"
	"net/http"

	commerceSvc "marketplace/internal/domain/services/commerce"
	"marketplace/internal/httputil"
)

// DeliveryHandler hands out download locations
type DeliveryHandler struct {
	delivery commerceSvc.DeliveryService
	logger   *slog.Logger
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(delivery commerceSvc.DeliveryService, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		delivery: delivery,
		logger:   logger,
	}
}

// DownloadAsset returns the delivery URLs of one asset.
// 410 when the caller owns an asset that was removed from the catalog.
// GET /api/assets/{id}/download
func (h *DeliveryHandler) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	d, err := h.delivery.ResolveAsset(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, d)
}

// DownloadFolder lists delivery URLs for every asset below a folder
// GET /api/folders/{id}/download
func (h *DeliveryHandler) DownloadFolder(w http.ResponseWriter, r *http.Request) {
	d, err := h.delivery.ResolveFolder(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, d)
}
