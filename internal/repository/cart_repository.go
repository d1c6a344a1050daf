package repository

import (
	"context"
	"errors"

	"commerce-api/internal/errs"
	"commerce-api/internal/events"
	"commerce-api/internal/models"
	"commerce-api/internal/storage"
)

// CartRepository implements cart operations over a CartStore, resolving
// product references through the ProductStore on reads.
type CartRepository struct {
	carts    storage.CartStore
	products storage.ProductStore
	sink     events.Sink
}

func NewCartRepository(carts storage.CartStore, products storage.ProductStore, sink events.Sink) *CartRepository {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &CartRepository{carts: carts, products: products, sink: sink}
}

// Create allocates a new empty cart.
func (r *CartRepository) Create(ctx context.Context) (*models.Cart, error) {
	cart, err := r.carts.Insert(ctx)
	if err != nil {
		return nil, err
	}
	r.sink.Publish(events.New(events.CartCreated, cart.ID))
	return cart, nil
}

// Get returns the cart with each line item's product resolved. A line
// item whose product was removed from the catalog keeps its quantity
// and resolves to a nil product.
func (r *CartRepository) Get(ctx context.Context, id string) (*models.PopulatedCart, error) {
	cart, err := r.carts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.populate(ctx, cart)
}

func (r *CartRepository) populate(ctx context.Context, cart *models.Cart) (*models.PopulatedCart, error) {
	populated := &models.PopulatedCart{
		ID:       cart.ID,
		Products: make([]models.PopulatedItem, 0, len(cart.Products)),
	}
	for _, item := range cart.Products {
		p, err := r.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrInvalidID) {
				p = nil // dangling reference, keep the line item
			} else {
				return nil, err
			}
		}
		populated.Products = append(populated.Products, models.PopulatedItem{
			Product:  p,
			Quantity: item.Quantity,
		})
	}
	return populated, nil
}

// Clear empties the cart's line items. Clearing an already-empty cart
// succeeds.
func (r *CartRepository) Clear(ctx context.Context, id string) error {
	cart, err := r.carts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	cart.Products = []models.CartItem{}
	if err := r.carts.Save(ctx, cart); err != nil {
		return err
	}
	r.sink.Publish(events.New(events.CartCleared, cart.ID))
	return nil
}

// RemoveItem deletes the line item for productID. A missing cart is
// reported before a missing item.
func (r *CartRepository) RemoveItem(ctx context.Context, id, productID string) (*models.PopulatedCart, error) {
	cart, err := r.carts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := cart.Item(productID)
	if idx < 0 {
		return nil, errs.ErrItemNotFound
	}
	cart.Products = append(cart.Products[:idx], cart.Products[idx+1:]...)
	if err := r.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	r.sink.Publish(events.New(events.CartItemRemoved, cart.ID))
	return r.populate(ctx, cart)
}
