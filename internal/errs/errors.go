// Package errs defines the error taxonomy shared by the storage,
// repository and reconciliation layers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID reports an identifier that is malformed for the
	// active storage backend (hex ObjectID for Mongo, decimal string
	// for the file store).
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound is the base sentinel matched by NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrItemNotFound reports a product id that is not a line item of
	// the cart being mutated. Distinct from ErrNotFound so callers can
	// tell "no such cart" apart from "cart exists, item absent".
	ErrItemNotFound = errors.New("product not in cart")

	// ErrProductUnavailable reports a product whose status flag is false.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrInvalidQuantity reports a requested quantity that is not a
	// positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrStorageUnavailable is the base sentinel for backend I/O
	// failures. The driver error stays wrapped for internal logging and
	// is never surfaced to API clients.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// NotFoundError reports an absent entity by name ("product", "cart").
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// Is makes errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError for the given entity.
func NotFound(entity string) error { return &NotFoundError{Entity: entity} }

// InsufficientStockError reports a stock ceiling violation with enough
// detail for the caller to explain the shortfall.
type InsufficientStockError struct {
	Stock     int
	InCart    int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: stock %d, in cart %d, requested %d",
		e.Stock, e.InCart, e.Requested)
}

// ValidationError reports a missing or invalid field on entity creation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Storage wraps a backend driver error under ErrStorageUnavailable.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
