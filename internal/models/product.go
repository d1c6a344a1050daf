package models

// Product is a catalog entry. Stock is the total number of units
// available across the whole catalog, shared by every cart.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// ProductInput is the create payload. Price and stock are pointers so a
// missing field can be told apart from an explicit zero.
type ProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    string   `json:"category"`
	Status      *bool    `json:"status"`
	Thumbnails  []string `json:"thumbnails"`
}

// Product materializes the input with defaults applied: status true
// unless given, thumbnails empty unless given. The ID is left for the
// store to assign.
func (in *ProductInput) Product() *Product {
	p := &Product{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		Category:    in.Category,
		Status:      true,
		Thumbnails:  []string{},
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Thumbnails != nil {
		p.Thumbnails = in.Thumbnails
	}
	return p
}

// ProductUpdate represents the updatable fields of a product. The
// identifier is deliberately absent: an update payload cannot move a
// record, whatever the request body claims.
type ProductUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Code        *string  `json:"code,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Status      *bool    `json:"status,omitempty"`
	Thumbnails  []string `json:"thumbnails,omitempty"`
}

// Apply merges the set fields into p.
func (u *ProductUpdate) Apply(p *Product) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Code != nil {
		p.Code = *u.Code
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Thumbnails != nil {
		p.Thumbnails = u.Thumbnails
	}
}

// Empty reports whether no field is set.
func (u *ProductUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Code == nil &&
		u.Price == nil && u.Stock == nil && u.Category == nil &&
		u.Status == nil && u.Thumbnails == nil
}
