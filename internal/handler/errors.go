package handler

import (
	"errors"
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var dupErr *domain.DuplicateReferenceError
	var goneErr *domain.UnavailableError

	switch {
	case errors.As(err, &dupErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, dupErr.Error(), map[string]interface{}{
			"payment_ref":          dupErr.PaymentRef,
			"existing_purchase_id": dupErr.ExistingPurchaseID,
		})
	case errors.As(err, &goneErr):
		extras := map[string]interface{}{"node_id": goneErr.NodeID}
		if goneErr.Title != "" {
			extras["title"] = goneErr.Title
		}
		httputil.RespondErrorWithExtras(w, http.StatusGone, goneErr.Error(), extras)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
