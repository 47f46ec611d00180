package stores

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/pagination"
)

func TestProductQueryRouting(t *testing.T) {
	ctx := context.Background()
	f := &fakeProducts{total: 30}
	s := NewProductStore(f)

	require.NoError(t, s.FetchProducts(ctx, 0))
	assert.Equal(t, "list", f.last)
	assert.Equal(t, DefaultProductPageSize, f.lastQuery.Size)
	assert.Len(t, s.State().Products, 12)
	assert.Equal(t, 3, s.State().Pagination.TotalPages)

	cat := int64(2)
	require.NoError(t, s.FilterByCategory(ctx, &cat))
	assert.Equal(t, "category", f.last)

	require.NoError(t, s.Search(ctx, "lamp"))
	assert.Equal(t, "search:lamp", f.last)

	lo := decimal.RequireFromString("5")
	require.NoError(t, s.FilterByPriceRange(ctx, &lo, nil))
	assert.Equal(t, "price", f.last)
	// price filtering keeps the other filters
	assert.Equal(t, "lamp", f.lastQuery.Name)
	assert.Equal(t, int64(2), f.lastQuery.CategoryID)
	assert.Equal(t, "5", f.lastQuery.MinPrice.String())

	require.NoError(t, s.ClearFilters(ctx))
	assert.Equal(t, "list", f.last)
	assert.Equal(t, Filters{}, s.State().Filters)
	assert.Equal(t, 0, f.lastQuery.Page)
}

func TestSetFiltersDefersFetch(t *testing.T) {
	ctx := context.Background()
	f := &fakeProducts{total: 30}
	s := NewProductStore(f).WithPageSize(10)

	s.SetFilters(Filters{Search: "desk"})
	assert.Empty(t, f.last, "setting filters alone issues no request")

	require.NoError(t, s.FetchProducts(ctx, 2))
	assert.Equal(t, "search:desk", f.last)
	assert.Equal(t, 2, f.lastQuery.Page)
	assert.Equal(t, 10, f.lastQuery.Size)
}

func TestProductGotoPageBounds(t *testing.T) {
	ctx := context.Background()
	f := &fakeProducts{total: 30}
	s := NewProductStore(f)
	require.NoError(t, s.FetchProducts(ctx, 0))

	require.NoError(t, s.GotoPage(ctx, 2))
	assert.Equal(t, 2, f.lastQuery.Page)
	assert.Equal(t, 2, s.State().Pagination.Page)

	require.ErrorIs(t, s.GotoPage(ctx, 3), pagination.ErrOutOfRange)
	require.ErrorIs(t, s.GotoPage(ctx, -1), pagination.ErrOutOfRange)
	assert.Equal(t, 2, f.lastQuery.Page, "rejected pages issue no request")
}

func TestProductFailures(t *testing.T) {
	ctx := context.Background()
	f := &fakeProducts{total: 5}
	s := NewProductStore(f)
	require.NoError(t, s.FetchProducts(ctx, 0))
	prev := s.State().Products

	f.failList = true
	require.Error(t, s.Search(ctx, "x"))
	assert.Equal(t, "Failed to search products", s.State().Err)
	assert.Equal(t, prev, s.State().Products)

	lo := decimal.NewFromInt(1)
	require.Error(t, s.FilterByPriceRange(ctx, &lo, &lo))
	assert.Equal(t, "Failed to filter products", s.State().Err)

	require.Error(t, s.FetchProduct(ctx, 404))
	assert.Equal(t, "Product not found", s.State().Err)

	s.ClearError()
	f.failCats = true
	require.Error(t, s.FetchCategories(ctx))
	assert.Empty(t, s.State().Err, "category failures are not surfaced")
}

func TestFetchProductAndSetCurrent(t *testing.T) {
	s := NewProductStore(&fakeProducts{})
	require.NoError(t, s.FetchProduct(context.Background(), 3))
	assert.Equal(t, int64(3), s.State().Current.ID)

	s.SetCurrent(&domain.Product{ID: 9})
	assert.Equal(t, int64(9), s.State().Current.ID)
	require.NoError(t, s.FetchCategories(context.Background()))
	assert.Len(t, s.State().Categories, 1)
}
