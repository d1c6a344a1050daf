// Package storage defines the durable store contract for products and
// carts, with two interchangeable backends: a flat-file JSON store and
// a MongoDB store. Both yield the same externally observable semantics
// for the operations the repositories depend on.
package storage

import (
	"context"

	"commerce-api/internal/models"
)

// Sort orders a product listing.
type Sort int

const (
	SortNone Sort = iota
	SortPriceAsc
	SortPriceDesc
)

// Filter narrows a product listing. A nil Status means "any status";
// an empty Category means "any category".
type Filter struct {
	Status   *bool
	Category string
}

// ProductStore persists Product records.
//
// Malformed identifiers for the active backend yield errs.ErrInvalidID,
// absent records yield errs.ErrNotFound, and backend I/O failures wrap
// errs.ErrStorageUnavailable.
type ProductStore interface {
	// List returns one page of matching products plus the total match
	// count. page and limit are positive; the caller applies defaults.
	List(ctx context.Context, f Filter, s Sort, page, limit int) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// Insert assigns p.ID and persists the record.
	Insert(ctx context.Context, p *models.Product) error
	// InsertMany persists the records in order, assigning each ID.
	// Whether a mid-sequence failure leaves earlier records written is
	// backend-dependent.
	InsertMany(ctx context.Context, ps []*models.Product) error
	// Update merges the set fields of u into the record and returns the
	// updated record.
	Update(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// CartStore persists Cart records.
type CartStore interface {
	// Insert creates an empty cart with a fresh identifier.
	Insert(ctx context.Context) (*models.Cart, error)
	FindByID(ctx context.Context, id string) (*models.Cart, error)
	// Save replaces the stored cart with c, matched by c.ID.
	Save(ctx context.Context, c *models.Cart) error
}
