// Package cart holds the inventory reconciliation engine: merging a
// requested line item into a cart subject to the product's stock
// ceiling.
package cart

import (
	"context"
	"sync"

	"commerce-api/internal/errs"
	"commerce-api/internal/events"
	"commerce-api/internal/models"
	"commerce-api/internal/storage"
)

// Engine reconciles cart line items against product stock. Stock is a
// ceiling on the cumulative quantity a single cart may hold; it is
// never decremented, so distinct carts can claim the same units.
//
// The read-check-write sequence is serialized per cart id, so
// concurrent adds to one cart cannot both pass the stock check against
// stale data. There is no cross-cart ordering guarantee.
type Engine struct {
	carts    storage.CartStore
	products storage.ProductStore
	sink     events.Sink

	mu    sync.Mutex
	locks map[string]*cartLock
}

type cartLock struct {
	sync.Mutex
	refs int
}

func NewEngine(carts storage.CartStore, products storage.ProductStore, sink events.Sink) *Engine {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Engine{
		carts:    carts,
		products: products,
		sink:     sink,
		locks:    make(map[string]*cartLock),
	}
}

// AddItem merges quantity units of productID into the cart. The new
// line-item total (existing quantity plus the request) must not exceed
// the product's stock; the check is cumulative so repeated small adds
// cannot slip past a ceiling a single large add would hit.
//
// All failures are detected before any write; a rejected call leaves
// the cart untouched.
func (e *Engine) AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	lock := e.acquire(cartID)
	defer e.release(cartID, lock)

	cart, err := e.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	product, err := e.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Status {
		return nil, errs.ErrProductUnavailable
	}
	if quantity < 1 {
		return nil, errs.ErrInvalidQuantity
	}

	current := 0
	idx := cart.Item(productID)
	if idx >= 0 {
		current = cart.Products[idx].Quantity
	}
	newTotal := current + quantity

	if product.Stock < newTotal {
		return nil, &errs.InsufficientStockError{
			Stock:     product.Stock,
			InCart:    current,
			Requested: quantity,
		}
	}

	if idx >= 0 {
		cart.Products[idx].Quantity = newTotal
	} else {
		cart.Products = append(cart.Products, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	if err := e.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	e.sink.Publish(events.New(events.CartItemAdded, cart.ID))
	return cart, nil
}

// acquire takes the per-cart lock, creating it on first use. Locks are
// reference-counted so the map does not grow with every cart ever seen.
func (e *Engine) acquire(cartID string) *cartLock {
	e.mu.Lock()
	l, ok := e.locks[cartID]
	if !ok {
		l = &cartLock{}
		e.locks[cartID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.Lock()
	return l
}

func (e *Engine) release(cartID string, l *cartLock) {
	l.Unlock()

	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, cartID)
	}
	e.mu.Unlock()
}
