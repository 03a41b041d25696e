package handler

import (
	"log/slog"
	"net/http"

	commerceSvc "marketplace/internal/domain/services/commerce"
	"marketplace/internal/httputil"
)

// AccessHandler answers entitlement questions
type AccessHandler struct {
	entitlement commerceSvc.EntitlementService
	logger      *slog.Logger
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(entitlement commerceSvc.EntitlementService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		entitlement: entitlement,
		logger:      logger,
	}
}

type accessResponse struct {
	NodeID    string `json:"node_id"`
	HasAccess bool   `json:"has_access"`
}

type bulkAccessResponse struct {
	Access map[string]bool `json:"access"`
}

// CheckAccess reports whether the caller may access one node.
// Anonymous callers get has_access=false.
// GET /api/access/{id}
func (h *AccessHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")

	allowed, err := h.entitlement.HasAccess(r.Context(), httputil.GetUserID(r), nodeID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, accessResponse{NodeID: nodeID, HasAccess: allowed})
}

// CheckAccessBulk reports access for many nodes at once
// POST /api/access/bulk
func (h *AccessHandler) CheckAccessBulk(w http.ResponseWriter, r *http.Request) {
	nodeIDs, ok := parseNodeIDs(w, r)
	if !ok {
		return
	}

	access, err := h.entitlement.HasAccessBulk(r.Context(), httputil.GetUserID(r), nodeIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bulkAccessResponse{Access: access})
}
