package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"storefront/internal/api"
	"storefront/internal/domain"
)

const (
	defaultProductPageSize = 20
	defaultProductSort     = "name,asc"
)

type ProductService struct {
	API *api.Client
}

func NewProductService(c *api.Client) *ProductService { return &ProductService{API: c} }

func pageParams(q domain.ProductQuery) url.Values {
	v := url.Values{}
	size := q.Size
	if size <= 0 {
		size = defaultProductPageSize
	}
	sort := q.Sort
	if sort == "" {
		sort = defaultProductSort
	}
	page := q.Page
	if page < 0 {
		page = 0
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	v.Set("sort", sort)
	return v
}

func filterParams(v url.Values, q domain.ProductQuery) url.Values {
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.CategoryID != 0 {
		v.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	return v
}

func (s *ProductService) List(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	var out domain.Page[domain.Product]
	err := s.API.Get(ctx, "/api/public/products", pageParams(q), &out)
	return out, err
}

func (s *ProductService) Get(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := s.API.Get(ctx, fmt.Sprintf("/api/public/products/%d", id), nil, &out)
	return out, err
}

// Search matches product names; the backend's parameter is "name".
func (s *ProductService) Search(ctx context.Context, keyword string, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	q.Name = keyword
	var out domain.Page[domain.Product]
	err := s.API.Get(ctx, "/api/public/products/search", filterParams(pageParams(q), q), &out)
	return out, err
}

func (s *ProductService) ByCategory(ctx context.Context, categoryID int64, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	var out domain.Page[domain.Product]
	err := s.API.Get(ctx, fmt.Sprintf("/api/public/categories/%d/products", categoryID), pageParams(q), &out)
	return out, err
}

func (s *ProductService) ByPriceRange(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	var out domain.Page[domain.Product]
	err := s.API.Get(ctx, "/api/public/products/search", filterParams(pageParams(q), q), &out)
	return out, err
}

func (s *ProductService) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := s.API.Get(ctx, "/api/public/categories", nil, &out)
	return out, err
}

func (s *ProductService) Category(ctx context.Context, id int64) (domain.Category, error) {
	var out domain.Category
	err := s.API.Get(ctx, fmt.Sprintf("/api/public/categories/%d", id), nil, &out)
	return out, err
}

func (s *ProductService) Inventory(ctx context.Context, productID int64) (domain.Inventory, error) {
	var out domain.Inventory
	err := s.API.Get(ctx, fmt.Sprintf("/api/public/products/%d/inventory", productID), nil, &out)
	return out, err
}

// ---------- admin ----------

func (s *ProductService) AdminList(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	var out domain.Page[domain.Product]
	err := s.API.Get(ctx, "/api/admin/products", pageParams(q), &out)
	return out, err
}

func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	var out domain.Product
	err := s.API.Post(ctx, "/api/admin/products", nil, in, &out)
	return out, err
}

func (s *ProductService) Update(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	var out domain.Product
	err := s.API.Put(ctx, fmt.Sprintf("/api/admin/products/%d", id), nil, in, &out)
	return out, err
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.API.Delete(ctx, fmt.Sprintf("/api/admin/products/%d", id), nil)
}

func quantityParam(qty int) url.Values {
	return url.Values{"quantity": []string{strconv.Itoa(qty)}}
}

func (s *ProductService) SetInventory(ctx context.Context, productID int64, qty int) (domain.Inventory, error) {
	var out domain.Inventory
	err := s.API.Put(ctx, fmt.Sprintf("/api/admin/products/%d/inventory", productID), quantityParam(qty), nil, &out)
	return out, err
}

func (s *ProductService) AddStock(ctx context.Context, productID int64, qty int) (domain.Inventory, error) {
	var out domain.Inventory
	err := s.API.Post(ctx, fmt.Sprintf("/api/admin/products/%d/inventory/add", productID), quantityParam(qty), nil, &out)
	return out, err
}

func (s *ProductService) RemoveStock(ctx context.Context, productID int64, qty int) (domain.Inventory, error) {
	var out domain.Inventory
	err := s.API.Post(ctx, fmt.Sprintf("/api/admin/products/%d/inventory/remove", productID), quantityParam(qty), nil, &out)
	return out, err
}

// categoryInput leaves description out when nil so an update keeps the
// stored one.
type categoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (s *ProductService) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	var out domain.Category
	err := s.API.Post(ctx, "/api/admin/categories", nil, categoryInput{Name: name, Description: &description}, &out)
	return out, err
}

// UpdateCategory renames a category. A nil description is left unchanged.
func (s *ProductService) UpdateCategory(ctx context.Context, id int64, name string, description *string) (domain.Category, error) {
	var out domain.Category
	err := s.API.Put(ctx, fmt.Sprintf("/api/admin/categories/%d", id), nil, categoryInput{Name: name, Description: description}, &out)
	return out, err
}

func (s *ProductService) DeleteCategory(ctx context.Context, id int64) error {
	return s.API.Delete(ctx, fmt.Sprintf("/api/admin/categories/%d", id), nil)
}
