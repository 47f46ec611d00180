package stores

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/pagination"
)

const DefaultProductPageSize = 12

type ProductAPI interface {
	List(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Search(ctx context.Context, keyword string, q domain.ProductQuery) (domain.Page[domain.Product], error)
	ByCategory(ctx context.Context, categoryID int64, q domain.ProductQuery) (domain.Page[domain.Product], error)
	ByPriceRange(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// Filters is the active catalog query. Nil pointers and "" are unset.
type Filters struct {
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
}

func (f Filters) hasPrice() bool { return f.MinPrice != nil || f.MaxPrice != nil }

func (f Filters) query(page, size int) domain.ProductQuery {
	q := domain.ProductQuery{Page: page, Size: size, Name: f.Search, MinPrice: f.MinPrice, MaxPrice: f.MaxPrice}
	if f.CategoryID != nil {
		q.CategoryID = *f.CategoryID
	}
	return q
}

type ProductState struct {
	Products   []domain.Product
	Current    *domain.Product
	Categories []domain.Category
	Filters    Filters
	Pagination pagination.State
	Loading    bool
	Err        string
}

type ProductStore struct {
	api      ProductAPI
	pageSize int
	c        container[ProductState]
}

func NewProductStore(a ProductAPI) *ProductStore {
	return &ProductStore{api: a, pageSize: DefaultProductPageSize}
}

// WithPageSize overrides the listing page size.
func (s *ProductStore) WithPageSize(n int) *ProductStore {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

func (s *ProductStore) State() ProductState { return s.c.get() }

func (s *ProductStore) Subscribe(fn func(ProductState)) (cancel func()) { return s.c.subscribe(fn) }

// FetchProducts loads page of the active filters. The endpoint follows
// the filter set: price range (which also carries name and category),
// then search, then category, else the plain listing.
func (s *ProductStore) FetchProducts(ctx context.Context, page int) error {
	f := s.State().Filters
	q := f.query(page, s.pageSize)

	fallback := "Failed to fetch products"
	var call func() (domain.Page[domain.Product], error)
	switch {
	case f.hasPrice():
		fallback = "Failed to filter products"
		call = func() (domain.Page[domain.Product], error) { return s.api.ByPriceRange(ctx, q) }
	case f.Search != "":
		fallback = "Failed to search products"
		call = func() (domain.Page[domain.Product], error) { return s.api.Search(ctx, f.Search, q) }
	case f.CategoryID != nil:
		call = func() (domain.Page[domain.Product], error) { return s.api.ByCategory(ctx, *f.CategoryID, q) }
	default:
		call = func() (domain.Page[domain.Product], error) { return s.api.List(ctx, q) }
	}

	s.c.set(func(st *ProductState) { st.Loading = true; st.Err = "" })
	p, err := call()
	if err != nil {
		s.c.set(func(st *ProductState) {
			st.Err = api.Message(err, fallback)
			st.Loading = false
		})
		return err
	}
	s.c.set(func(st *ProductState) {
		st.Products = p.Content
		st.Pagination = pagination.From(p)
		st.Loading = false
	})
	return nil
}

// GotoPage re-issues the active query for page, after a bounds check.
func (s *ProductStore) GotoPage(ctx context.Context, page int) error {
	if err := s.State().Pagination.Check(page); err != nil {
		return err
	}
	return s.FetchProducts(ctx, page)
}

// FetchCategories failures are logged only; the catalog still works
// without the category list.
func (s *ProductStore) FetchCategories(ctx context.Context) error {
	cats, err := s.api.Categories(ctx)
	if err != nil {
		applog.Error(nil, "products.categories.fetch", err, nil)
		return err
	}
	s.c.set(func(st *ProductState) { st.Categories = cats })
	return nil
}

func (s *ProductStore) FetchProduct(ctx context.Context, id int64) error {
	s.c.set(func(st *ProductState) { st.Loading = true; st.Err = "" })
	p, err := s.api.Get(ctx, id)
	if err != nil {
		s.c.set(func(st *ProductState) {
			st.Err = api.Message(err, "Failed to fetch product")
			st.Loading = false
		})
		return err
	}
	s.c.set(func(st *ProductState) {
		st.Current = &p
		st.Loading = false
	})
	return nil
}

// Search replaces the keyword, keeps the other filters and loads page 0.
func (s *ProductStore) Search(ctx context.Context, keyword string) error {
	s.c.set(func(st *ProductState) { st.Filters.Search = keyword })
	return s.FetchProducts(ctx, 0)
}

// FilterByCategory with nil drops the category filter.
func (s *ProductStore) FilterByCategory(ctx context.Context, categoryID *int64) error {
	s.c.set(func(st *ProductState) { st.Filters.CategoryID = categoryID })
	return s.FetchProducts(ctx, 0)
}

func (s *ProductStore) FilterByPriceRange(ctx context.Context, min, max *decimal.Decimal) error {
	s.c.set(func(st *ProductState) {
		st.Filters.MinPrice = min
		st.Filters.MaxPrice = max
	})
	return s.FetchProducts(ctx, 0)
}

// SetFilters replaces the whole filter set without fetching, for callers
// that restore a saved query before picking the page to load.
func (s *ProductStore) SetFilters(f Filters) {
	s.c.set(func(st *ProductState) { st.Filters = f })
}

func (s *ProductStore) ClearFilters(ctx context.Context) error {
	s.c.set(func(st *ProductState) { st.Filters = Filters{} })
	return s.FetchProducts(ctx, 0)
}

func (s *ProductStore) SetCurrent(p *domain.Product) {
	s.c.set(func(st *ProductState) { st.Current = p })
}

func (s *ProductStore) ClearError() { s.c.set(func(st *ProductState) { st.Err = "" }) }
