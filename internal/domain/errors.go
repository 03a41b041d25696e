package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("invalid argument")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrDuplicateReference means a payment reference is already bound to a
	// different purchase payload.
	ErrDuplicateReference = errors.New("duplicate payment reference")

	// ErrUnavailable means the caller is entitled to a node that is no
	// longer in the catalog.
	ErrUnavailable = errors.New("asset unavailable")
)

// DuplicateReferenceError carries the purchase already bound to a payment reference.
// Implements HTTPError interface for extensible error handling
type DuplicateReferenceError struct {
	PaymentRef         string
	ExistingPurchaseID string
	Reason             string
}

// Error implements the error interface
func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("payment reference %q already recorded as %s: %s",
		e.PaymentRef, e.ExistingPurchaseID, e.Reason)
}

// StatusCode implements the HTTPError interface
func (e *DuplicateReferenceError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrDuplicateReference
func (e *DuplicateReferenceError) Is(target error) bool {
	return target == ErrDuplicateReference
}

// UnavailableError reports an entitled node that has been removed from the catalog.
// Title comes from the purchase snapshot when one exists.
type UnavailableError struct {
	NodeID string
	Title  string
}

func (e *UnavailableError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%s (%s) is no longer available", e.NodeID, e.Title)
	}
	return fmt.Sprintf("%s is no longer available", e.NodeID)
}

func (e *UnavailableError) StatusCode() int { return http.StatusGone }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
