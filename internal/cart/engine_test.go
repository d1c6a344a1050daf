package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-api/internal/errs"
	"commerce-api/internal/events"
	"commerce-api/internal/models"
	"commerce-api/internal/storage"
)

type captureSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *captureSink) Publish(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *captureSink) byType(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	engine   *Engine
	products *storage.FileProductStore
	carts    *storage.FileCartStore
	sink     *captureSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	products := storage.NewFileProductStore(dir)
	carts := storage.NewFileCartStore(dir)
	sink := &captureSink{}
	return &fixture{
		engine:   NewEngine(carts, products, sink),
		products: products,
		carts:    carts,
		sink:     sink,
	}
}

func (f *fixture) addProduct(t *testing.T, stock int, status bool) string {
	t.Helper()
	p := &models.Product{
		Title:       "widget",
		Description: "a widget",
		Code:        "W-1",
		Price:       9.99,
		Status:      status,
		Stock:       stock,
		Category:    "widgets",
		Thumbnails:  []string{},
	}
	require.NoError(t, f.products.Insert(context.Background(), p))
	return p.ID
}

func (f *fixture) newCart(t *testing.T) string {
	t.Helper()
	c, err := f.carts.Insert(context.Background())
	require.NoError(t, err)
	return c.ID
}

func TestAddItem_AppendsNewLineItem(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 10, true)
	cid := f.newCart(t)

	cart, err := f.engine.AddItem(context.Background(), cid, pid, 3)
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, pid, cart.Products[0].ProductID)
	assert.Equal(t, 3, cart.Products[0].Quantity)
	assert.Equal(t, 1, f.sink.byType(events.CartItemAdded))
}

func TestAddItem_MergesIntoExistingLineItem(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 10, true)
	cid := f.newCart(t)
	ctx := context.Background()

	_, err := f.engine.AddItem(ctx, cid, pid, 2)
	require.NoError(t, err)
	cart, err := f.engine.AddItem(ctx, cid, pid, 3)
	require.NoError(t, err)

	// Merging is mandatory: never a second line item for the same product.
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 5, cart.Products[0].Quantity)
}

func TestAddItem_QuantityIsAdditive(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 20, true)
	ctx := context.Background()

	split := f.newCart(t)
	_, err := f.engine.AddItem(ctx, split, pid, 4)
	require.NoError(t, err)
	splitCart, err := f.engine.AddItem(ctx, split, pid, 6)
	require.NoError(t, err)

	single := f.newCart(t)
	singleCart, err := f.engine.AddItem(ctx, single, pid, 10)
	require.NoError(t, err)

	assert.Equal(t, singleCart.Products[0].Quantity, splitCart.Products[0].Quantity)
}

func TestAddItem_StockCeilingIsCumulative(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 2, true)
	cid := f.newCart(t)
	ctx := context.Background()

	cart, err := f.engine.AddItem(ctx, cid, pid, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Products[0].Quantity)

	_, err = f.engine.AddItem(ctx, cid, pid, 1)
	var stockErr *errs.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Stock)
	assert.Equal(t, 2, stockErr.InCart)
	assert.Equal(t, 1, stockErr.Requested)

	// Rejection leaves the cart untouched.
	got, err := f.carts.FindByID(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Products[0].Quantity)
}

func TestAddItem_SucceedsExactlyStockTimes(t *testing.T) {
	f := newFixture(t)
	const stock = 4
	pid := f.addProduct(t, stock, true)
	cid := f.newCart(t)
	ctx := context.Background()

	for i := 0; i < stock; i++ {
		_, err := f.engine.AddItem(ctx, cid, pid, 1)
		require.NoError(t, err, "add %d within stock", i+1)
	}

	_, err := f.engine.AddItem(ctx, cid, pid, 1)
	var stockErr *errs.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, stock, stockErr.InCart)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 10, true)
	cid := f.newCart(t)
	ctx := context.Background()

	for _, qty := range []int{0, -1, -100} {
		_, err := f.engine.AddItem(ctx, cid, pid, qty)
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity, "quantity %d", qty)
	}
	assert.Zero(t, f.sink.byType(events.CartItemAdded))
}

func TestAddItem_UnavailableProduct(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 10, false)
	cid := f.newCart(t)

	_, err := f.engine.AddItem(context.Background(), cid, pid, 1)
	assert.ErrorIs(t, err, errs.ErrProductUnavailable)
}

func TestAddItem_MissingCartAndProduct(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 10, true)
	cid := f.newCart(t)
	ctx := context.Background()

	_, err := f.engine.AddItem(ctx, "99", pid, 1)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "cart", nf.Entity)

	_, err = f.engine.AddItem(ctx, cid, "99", 1)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)
}

func TestAddItem_StockNotDecremented(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, 5, true)
	ctx := context.Background()

	// Stock is a per-cart ceiling, not a reservation: two carts can
	// each hold the full stock.
	for i := 0; i < 2; i++ {
		cid := f.newCart(t)
		_, err := f.engine.AddItem(ctx, cid, pid, 5)
		require.NoError(t, err)
	}

	p, err := f.products.FindByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestAddItem_ConcurrentAddsRespectCeiling(t *testing.T) {
	f := newFixture(t)
	const stock = 50
	pid := f.addProduct(t, stock, true)
	cid := f.newCart(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 2*stock; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.AddItem(ctx, cid, pid, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)

	cart, err := f.carts.FindByID(ctx, cid)
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, stock, cart.Products[0].Quantity)
}
