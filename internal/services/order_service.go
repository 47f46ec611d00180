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
	DefaultOrderPageSize      = 10
	DefaultAdminOrderPageSize = 20
)

type OrderService struct {
	API *api.Client
}

func NewOrderService(c *api.Client) *OrderService { return &OrderService{API: c} }

func pageOf(page, size, def int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = def
	}
	return url.Values{"page": []string{strconv.Itoa(page)}, "size": []string{strconv.Itoa(size)}}
}

func (s *OrderService) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	var out domain.Order
	err := s.API.Post(ctx, "/api/orders/checkout", nil, req, &out)
	return out, err
}

func (s *OrderService) History(ctx context.Context, page, size int) (domain.Page[domain.Order], error) {
	var out domain.Page[domain.Order]
	err := s.API.Get(ctx, "/api/orders", pageOf(page, size, DefaultOrderPageSize), &out)
	return out, err
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	var out domain.Order
	err := s.API.Get(ctx, fmt.Sprintf("/api/orders/%d", id), nil, &out)
	return out, err
}

func (s *OrderService) Cancel(ctx context.Context, id int64) (domain.Order, error) {
	var out domain.Order
	err := s.API.Post(ctx, fmt.Sprintf("/api/orders/%d/cancel", id), nil, nil, &out)
	return out, err
}

func (s *OrderService) All(ctx context.Context, page, size int) (domain.Page[domain.Order], error) {
	var out domain.Page[domain.Order]
	err := s.API.Get(ctx, "/api/admin/orders", pageOf(page, size, DefaultAdminOrderPageSize), &out)
	return out, err
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	q := url.Values{"status": []string{string(status)}}
	err := s.API.Put(ctx, fmt.Sprintf("/api/admin/orders/%d/status", id), q, nil, &out)
	return out, err
}
