package services

import (
	"context"
	"fmt"

	"storefront/internal/api"
	"storefront/internal/domain"
)

type CartService struct {
	API *api.Client
}

func NewCartService(c *api.Client) *CartService { return &CartService{API: c} }

func (s *CartService) Get(ctx context.Context) (domain.CartResponse, error) {
	var out domain.CartResponse
	err := s.API.Get(ctx, "/api/cart", nil, &out)
	return out, err
}

func (s *CartService) AddItem(ctx context.Context, req domain.AddToCartRequest) (domain.Cart, error) {
	var out domain.Cart
	err := s.API.Post(ctx, "/api/cart/items", nil, req, &out)
	return out, err
}

// UpdateItem sets the quantity of a line; the backend takes it as a query
// parameter.
func (s *CartService) UpdateItem(ctx context.Context, productID int64, qty int) (domain.Cart, error) {
	var out domain.Cart
	err := s.API.Put(ctx, fmt.Sprintf("/api/cart/items/%d", productID), quantityParam(qty), nil, &out)
	return out, err
}

func (s *CartService) RemoveItem(ctx context.Context, productID int64) (domain.Cart, error) {
	var out domain.Cart
	err := s.API.Delete(ctx, fmt.Sprintf("/api/cart/items/%d", productID), &out)
	return out, err
}

func (s *CartService) Clear(ctx context.Context) error {
	return s.API.Delete(ctx, "/api/cart", nil)
}
