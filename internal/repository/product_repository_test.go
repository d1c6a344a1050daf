package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-api/internal/errs"
	"commerce-api/internal/models"
	"commerce-api/internal/storage"
)

func newProductRepo(t *testing.T) (*ProductRepository, *storage.FileProductStore) {
	t.Helper()
	store := storage.NewFileProductStore(t.TempDir())
	return NewProductRepository(store, nil), store
}

func input(title string) models.ProductInput {
	price := 10.0
	stock := 5
	return models.ProductInput{
		Title:       title,
		Description: "desc",
		Code:        "SKU-" + title,
		Price:       &price,
		Stock:       &stock,
		Category:    "misc",
	}
}

func TestBuildFilter(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }
	tests := []struct {
		query string
		want  storage.Filter
	}{
		{"", storage.Filter{}},
		{"status:true", storage.Filter{Status: boolPtr(true)}},
		{"status:false", storage.Filter{Status: boolPtr(false)}},
		{"STATUS: TRUE", storage.Filter{Status: boolPtr(true)}},
		{"status : false", storage.Filter{Status: boolPtr(false)}},
		{"true", storage.Filter{Status: boolPtr(true)}},
		{"False", storage.Filter{Status: boolPtr(false)}},
		{"electronics", storage.Filter{Category: "electronics"}},
		{"status:maybe", storage.Filter{Category: "status:maybe"}},
		{"  books  ", storage.Filter{Category: "books"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := buildFilter(tt.query)
			if tt.want.Status == nil {
				assert.Nil(t, got.Status)
			} else {
				require.NotNil(t, got.Status)
				assert.Equal(t, *tt.want.Status, *got.Status)
			}
			assert.Equal(t, tt.want.Category, got.Category)
		})
	}
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, storage.SortPriceAsc, buildSort("asc"))
	assert.Equal(t, storage.SortPriceDesc, buildSort("DESC"))
	assert.Equal(t, storage.SortNone, buildSort(""))
	assert.Equal(t, storage.SortNone, buildSort("price"))
	assert.Equal(t, storage.SortNone, buildSort("banana"))
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, toInt("3", 1))
	assert.Equal(t, 1, toInt("", 1))
	assert.Equal(t, 1, toInt("abc", 1))
	assert.Equal(t, 10, toInt("0", 10))
	assert.Equal(t, 10, toInt("-5", 10))
	assert.Equal(t, 10, toInt("2.5", 10))
}

func TestCreate_AppliesDefaults(t *testing.T) {
	repo, _ := newProductRepo(t)

	p, err := repo.Create(context.Background(), input("lamp"))
	require.NoError(t, err)
	assert.True(t, p.Status, "status defaults to true")
	assert.NotNil(t, p.Thumbnails)
	assert.Empty(t, p.Thumbnails)
	assert.NotEmpty(t, p.ID)
}

func TestCreate_ValidationLeavesCollectionUnchanged(t *testing.T) {
	repo, store := newProductRepo(t)
	ctx := context.Background()

	for _, field := range []string{"title", "description", "code", "price", "stock", "category"} {
		in := input("lamp")
		switch field {
		case "title":
			in.Title = ""
		case "description":
			in.Description = ""
		case "code":
			in.Code = ""
		case "price":
			in.Price = nil
		case "stock":
			in.Stock = nil
		case "category":
			in.Category = ""
		}

		_, err := repo.Create(ctx, in)
		var vErr *errs.ValidationError
		require.ErrorAs(t, err, &vErr, "missing %s", field)
		assert.Equal(t, field, vErr.Field)
	}

	_, total, err := store.List(ctx, storage.Filter{}, storage.SortNone, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "no rejected create may write")
}

func TestCreate_NegativeValuesRejected(t *testing.T) {
	repo, _ := newProductRepo(t)
	ctx := context.Background()

	in := input("lamp")
	negative := -1.0
	in.Price = &negative
	_, err := repo.Create(ctx, in)
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price", vErr.Field)

	in = input("lamp")
	negStock := -3
	in.Stock = &negStock
	_, err = repo.Create(ctx, in)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "stock", vErr.Field)
}

func TestCreateBulk_ReportsFirstInvalidPosition(t *testing.T) {
	repo, store := newProductRepo(t)
	ctx := context.Background()

	bad := input("second")
	bad.Code = ""
	_, err := repo.CreateBulk(ctx, []models.ProductInput{input("first"), bad, input("third")})
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "product #2")

	_, total, err := store.List(ctx, storage.Filter{}, storage.SortNone, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "validation happens before any write")
}

func TestCreateBulk_EmptyArray(t *testing.T) {
	repo, _ := newProductRepo(t)

	_, err := repo.CreateBulk(context.Background(), nil)
	var vErr *errs.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCreateBulk_InsertsAll(t *testing.T) {
	repo, _ := newProductRepo(t)

	ps, err := repo.CreateBulk(context.Background(), []models.ProductInput{input("a"), input("b")})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.NotEqual(t, ps[0].ID, ps[1].ID)
}

func TestUpdate_MergesAndKeepsID(t *testing.T) {
	repo, _ := newProductRepo(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, input("lamp"))
	require.NoError(t, err)

	title := "desk lamp"
	updated, err := repo.Update(ctx, p.ID, models.ProductUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "desk lamp", updated.Title)
	assert.Equal(t, p.Price, updated.Price)

	_, err = repo.Update(ctx, "999", models.ProductUpdate{Title: &title})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, _ := newProductRepo(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, input("lamp"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.Get(ctx, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), errs.ErrNotFound)
}

func TestList_Envelope(t *testing.T) {
	repo, _ := newProductRepo(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		in := input(fmt.Sprintf("p%02d", i))
		price := float64(i + 1)
		in.Price = &price
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, ListParams{Page: "2", Limit: "5", Sort: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "success", page.Status)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.True(t, page.HasPrevPage)
	assert.True(t, page.HasNextPage)
	require.NotNil(t, page.PrevPage)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 1, *page.PrevPage)
	assert.Equal(t, 3, *page.NextPage)
	require.Len(t, page.Payload, 5)
	assert.Equal(t, 6.0, page.Payload[0].Price, "ascending price, second page starts at 6")
}

func TestList_DefaultsAndCoercion(t *testing.T) {
	repo, _ := newProductRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, input(fmt.Sprintf("p%d", i)))
		require.NoError(t, err)
	}

	for _, params := range []ListParams{
		{},
		{Page: "0", Limit: "-1"},
		{Page: "abc", Limit: "xyz"},
	} {
		page, err := repo.List(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.Limit)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasPrevPage)
		assert.False(t, page.HasNextPage)
		assert.Nil(t, page.PrevPage)
		assert.Nil(t, page.NextPage)
	}
}

func TestList_EmptyCatalog(t *testing.T) {
	repo, _ := newProductRepo(t)

	page, err := repo.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Payload)
}

func TestList_StatusFilter(t *testing.T) {
	repo, _ := newProductRepo(t)
	ctx := context.Background()

	inactive := input("off")
	f := false
	inactive.Status = &f
	_, err := repo.Create(ctx, inactive)
	require.NoError(t, err)
	_, err = repo.Create(ctx, input("on"))
	require.NoError(t, err)

	page, err := repo.List(ctx, ListParams{Query: "status:true"})
	require.NoError(t, err)
	require.Len(t, page.Payload, 1)
	assert.Equal(t, "on", page.Payload[0].Title)
}
