package handler

import (
	"fmt"
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/httputil"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// nodeIDsRequest is the body of the bulk access and price preview endpoints
type nodeIDsRequest struct {
	NodeIDs []string `json:"node_ids"`
}

func (r *nodeIDsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NodeIDs,
			validation.Required,
			validation.Length(1, config.MaxBulkNodes),
		),
	)
}

// parseNodeIDs decodes and validates a node id list. On failure the
// error response has already been written.
func parseNodeIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req nodeIDsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err := req.Validate(); err != nil {
		handleError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return nil, false
	}
	return req.NodeIDs, true
}
