package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"commerce-api/internal/errs"
	"commerce-api/internal/events"
	"commerce-api/internal/models"
	"commerce-api/internal/storage"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ListParams are the raw listing query values before parsing. The
// grammar matches what the catalog always accepted: query is either
// "status:true"/"status:false", a bare "true"/"false" (a status
// filter), or a category name; sort is "asc"/"desc" on price.
type ListParams struct {
	Query string
	Sort  string
	Page  string
	Limit string
}

// Page is the listing envelope. PrevLink and NextLink are filled by the
// HTTP layer, which owns the request URL.
type Page struct {
	Status      string           `json:"status"`
	Payload     []models.Product `json:"payload"`
	TotalPages  int              `json:"totalPages"`
	PrevPage    *int             `json:"prevPage"`
	NextPage    *int             `json:"nextPage"`
	Page        int              `json:"page"`
	HasPrevPage bool             `json:"hasPrevPage"`
	HasNextPage bool             `json:"hasNextPage"`
	PrevLink    *string          `json:"prevLink"`
	NextLink    *string          `json:"nextLink"`

	// Limit is the effective page size after defaulting, for link
	// construction. Not part of the envelope.
	Limit int `json:"-"`
}

// ProductRepository implements catalog operations over a ProductStore.
type ProductRepository struct {
	store storage.ProductStore
	sink  events.Sink
}

func NewProductRepository(store storage.ProductStore, sink events.Sink) *ProductRepository {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &ProductRepository{store: store, sink: sink}
}

// List returns one page of products matching the parsed params.
func (r *ProductRepository) List(ctx context.Context, params ListParams) (*Page, error) {
	filter := buildFilter(params.Query)
	sort := buildSort(params.Sort)
	page := toInt(params.Page, defaultPage)
	limit := toInt(params.Limit, defaultLimit)

	products, total, err := r.store.List(ctx, filter, sort, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	result := &Page{
		Status:      "success",
		Payload:     products,
		TotalPages:  totalPages,
		Page:        page,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
		Limit:       limit,
	}
	if result.HasPrevPage {
		prev := page - 1
		result.PrevPage = &prev
	}
	if result.HasNextPage {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

// Get returns one product by id.
func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	return r.store.FindByID(ctx, id)
}

// Create validates the input and persists a new product.
func (r *ProductRepository) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validateInput(in, 0); err != nil {
		return nil, err
	}
	p := in.Product()
	if err := r.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	r.sink.Publish(events.New(events.ProductCreated, p.ID))
	return p, nil
}

// CreateBulk validates every input before writing anything, reporting
// the first invalid entry by position. Whether a storage failure midway
// leaves earlier records written is backend-dependent.
func (r *ProductRepository) CreateBulk(ctx context.Context, ins []models.ProductInput) ([]*models.Product, error) {
	if len(ins) == 0 {
		return nil, &errs.ValidationError{Message: "product array is empty"}
	}
	for i, in := range ins {
		if err := validateInput(in, i+1); err != nil {
			return nil, err
		}
	}
	ps := make([]*models.Product, len(ins))
	for i := range ins {
		ps[i] = ins[i].Product()
	}
	if err := r.store.InsertMany(ctx, ps); err != nil {
		return nil, err
	}
	for _, p := range ps {
		r.sink.Publish(events.New(events.ProductCreated, p.ID))
	}
	return ps, nil
}

// Update merges the allow-listed fields into the product. The
// identifier cannot be changed: ProductUpdate carries no id field, so
// any id in the request body is dropped at decode time.
func (r *ProductRepository) Update(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	p, err := r.store.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	r.sink.Publish(events.New(events.ProductUpdated, p.ID))
	return p, nil
}

// Delete removes the product from the catalog. Line items referencing
// it are left in place and resolve to a null product on cart reads.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.sink.Publish(events.New(events.ProductDeleted, id))
	return nil
}

// validateInput checks the required create fields in a fixed order.
// pos is the 1-based bulk position, or 0 for a single create.
func validateInput(in models.ProductInput, pos int) error {
	field := ""
	switch {
	case in.Title == "":
		field = "title"
	case in.Description == "":
		field = "description"
	case in.Code == "":
		field = "code"
	case in.Price == nil:
		field = "price"
	case in.Stock == nil:
		field = "stock"
	case in.Category == "":
		field = "category"
	}
	if field == "" {
		if in.Price != nil && *in.Price < 0 {
			return &errs.ValidationError{Field: "price", Message: "price cannot be negative"}
		}
		if in.Stock != nil && *in.Stock < 0 {
			return &errs.ValidationError{Field: "stock", Message: "stock cannot be negative"}
		}
		return nil
	}
	msg := "missing required field: " + field
	if pos > 0 {
		msg = fmt.Sprintf("product #%d: %s", pos, msg)
	}
	return &errs.ValidationError{Field: field, Message: msg}
}

func buildFilter(raw string) storage.Filter {
	q := strings.TrimSpace(raw)
	if q == "" {
		return storage.Filter{}
	}
	lower := strings.ToLower(q)
	if i := strings.Index(lower, ":"); i >= 0 && strings.TrimSpace(lower[:i]) == "status" {
		v := strings.TrimSpace(lower[i+1:])
		if v == "true" || v == "false" {
			status := v == "true"
			return storage.Filter{Status: &status}
		}
	}
	if lower == "true" || lower == "false" {
		status := lower == "true"
		return storage.Filter{Status: &status}
	}
	return storage.Filter{Category: q}
}

func buildSort(raw string) storage.Sort {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc":
		return storage.SortPriceAsc
	case "desc":
		return storage.SortPriceDesc
	default:
		return storage.SortNone
	}
}

// toInt parses v, falling back to def when it is not a positive integer.
func toInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}
