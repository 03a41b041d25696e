package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/domain/models/catalog"
	catalogSvc "marketplace/internal/domain/services/catalog"
	"marketplace/internal/httputil"
)

// CatalogHandler serves category browsing
type CatalogHandler struct {
	trees     catalogSvc.TreeService
	hierarchy catalogSvc.HierarchyResolver
	logger    *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(trees catalogSvc.TreeService, hierarchy catalogSvc.HierarchyResolver, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		trees:     trees,
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// GetTree returns the category tree with price and ownership per node
// GET /api/catalog/{category}/tree
func (h *CatalogHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.PathValue("category"))
	if err != nil {
		handleError(w, err)
		return
	}

	tree, err := h.trees.GetCategoryTree(r.Context(), httputil.GetUserID(r), category)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetAncestors returns a folder's chain up to its category root (breadcrumbs)
// GET /api/catalog/{category}/folders/{id}/ancestors
func (h *CatalogHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.PathValue("category"))
	if err != nil {
		handleError(w, err)
		return
	}
	folderID := r.PathValue("id")

	node, err := h.hierarchy.ResolveNode(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}
	if node.Kind != catalog.NodeFolder || node.Category() != category {
		handleError(w, fmt.Errorf("%s folder %s: %w", category, folderID, domain.ErrNotFound))
		return
	}

	chain, err := h.hierarchy.Ancestors(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chain)
}
