package handler

import "net/http"

// Handlers groups every HTTP handler of the service
type Handlers struct {
	Health    *HealthHandler
	Access    *AccessHandler
	Prices    *PriceHandler
	Purchases *PurchaseHandler
	Catalog   *CatalogHandler
	Delivery  *DeliveryHandler
}

// RegisterRoutes mounts every route on mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Entitlement
	mux.HandleFunc("GET /api/access/{id}", h.Access.CheckAccess)
	mux.HandleFunc("POST /api/access/bulk", h.Access.CheckAccessBulk)

	// Prices
	mux.HandleFunc("POST /api/prices/preview", h.Prices.PreviewPrices)
	mux.HandleFunc("GET /api/prices/{id}", h.Prices.GetPrice)

	// Purchases (library)
	mux.HandleFunc("POST /api/purchases", h.Purchases.RecordPurchase)
	mux.HandleFunc("GET /api/purchases", h.Purchases.ListPurchases)
	mux.HandleFunc("GET /api/purchases/{id}", h.Purchases.GetPurchase)

	// Catalog browsing
	mux.HandleFunc("GET /api/catalog/{category}/tree", h.Catalog.GetTree)
	mux.HandleFunc("GET /api/catalog/{category}/folders/{id}/ancestors", h.Catalog.GetAncestors)

	// Delivery
	mux.HandleFunc("GET /api/assets/{id}/download", h.Delivery.DownloadAsset)
	mux.HandleFunc("GET /api/folders/{id}/download", h.Delivery.DownloadFolder)
}
