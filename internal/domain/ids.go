package domain

import (
	"fmt"

	"github.com/google/uuid"
	"go.jetify.com/typeid/v2"
)

// ValidateNodeID checks that a catalog node id is a well-formed UUID.
// Malformed ids are ErrValidation; existence is not checked here.
func ValidateNodeID(id string) error {
	if id == "" {
		return fmt.Errorf("node id is required: %w", ErrValidation)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("malformed node id %q: %w", id, ErrValidation)
	}
	return nil
}

// ValidateNodeIDs validates every id and rejects an empty list
func ValidateNodeIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one node id is required: %w", ErrValidation)
	}
	for _, id := range ids {
		if err := ValidateNodeID(id); err != nil {
			return err
		}
	}
	return nil
}

// PurchaseIDPrefix is the TypeID prefix of purchase ids ("pur_01h...")
const PurchaseIDPrefix = "pur"

// NewPurchaseID generates a K-sortable purchase id
func NewPurchaseID() (string, error) {
	tid, err := typeid.Generate(PurchaseIDPrefix)
	if err != nil {
		return "", fmt.Errorf("generate purchase id: %w", err)
	}
	return tid.String(), nil
}

// ValidatePurchaseID checks that id is a TypeID carrying the purchase prefix
func ValidatePurchaseID(id string) error {
	tid, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("malformed purchase id %q: %w", id, ErrValidation)
	}
	if tid.Prefix() != PurchaseIDPrefix {
		return fmt.Errorf("purchase id %q has prefix %q: %w", id, tid.Prefix(), ErrValidation)
	}
	return nil
}
