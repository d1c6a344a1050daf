package models

// CartItem is a line item pairing a product reference with a quantity.
// A cart holds at most one line item per product id.
type CartItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Cart is an ordered sequence of line items.
type Cart struct {
	ID       string     `json:"id"`
	Products []CartItem `json:"products"`
}

// Item returns the index of the line item for productID, or -1.
func (c *Cart) Item(productID string) int {
	for i, it := range c.Products {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// PopulatedItem is a line item with its product reference resolved for
// display. Product is nil when the referenced product no longer exists
// in the catalog; the line item itself is kept.
type PopulatedItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// PopulatedCart is the display view of a cart.
type PopulatedCart struct {
	ID       string          `json:"id"`
	Products []PopulatedItem `json:"products"`
}
