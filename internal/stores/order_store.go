package stores

import (
	"context"
	"errors"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/pagination"
	"storefront/internal/validate"
)

const (
	DefaultOrderPageSize      = 10
	DefaultAdminOrderPageSize = 20
)

var (
	ErrEmptyCart = &validate.Error{Field: "cart", Message: "Your cart is empty"}
	ErrNotAdmin  = errors.New("order status can only be changed from the admin order store")
)

type OrderAPI interface {
	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error)
	History(ctx context.Context, page, size int) (domain.Page[domain.Order], error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	Cancel(ctx context.Context, id int64) (domain.Order, error)
	All(ctx context.Context, page, size int) (domain.Page[domain.Order], error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error)
}

type OrderState struct {
	Orders     []domain.Order
	Current    *domain.Order
	LastPlaced *domain.Order
	Pagination pagination.State
	Loading    bool
	Err        string
}

// OrderStore lists either the caller's own orders or, when built with
// NewAdminOrderStore, every order.
type OrderStore struct {
	api      OrderAPI
	admin    bool
	pageSize int
	c        container[OrderState]
}

func NewOrderStore(a OrderAPI) *OrderStore {
	return &OrderStore{api: a, pageSize: DefaultOrderPageSize}
}

func NewAdminOrderStore(a OrderAPI) *OrderStore {
	return &OrderStore{api: a, admin: true, pageSize: DefaultAdminOrderPageSize}
}

func (s *OrderStore) State() OrderState { return s.c.get() }

func (s *OrderStore) Subscribe(fn func(OrderState)) (cancel func()) { return s.c.subscribe(fn) }

func (s *OrderStore) setErr(err error, fallback string) {
	s.c.set(func(st *OrderState) {
		st.Err = api.Message(err, fallback)
		st.Loading = false
	})
}

func (s *OrderStore) Fetch(ctx context.Context, page int) error {
	s.c.set(func(st *OrderState) { st.Loading = true; st.Err = "" })
	var (
		p   domain.Page[domain.Order]
		err error
	)
	if s.admin {
		p, err = s.api.All(ctx, page, s.pageSize)
	} else {
		p, err = s.api.History(ctx, page, s.pageSize)
	}
	if err != nil {
		s.setErr(err, "Failed to fetch orders")
		return err
	}
	s.c.set(func(st *OrderState) {
		st.Orders = p.Content
		st.Pagination = pagination.From(p)
		st.Loading = false
	})
	return nil
}

func (s *OrderStore) GotoPage(ctx context.Context, page int) error {
	if err := s.State().Pagination.Check(page); err != nil {
		return err
	}
	return s.Fetch(ctx, page)
}

func (s *OrderStore) FetchOrder(ctx context.Context, id int64) error {
	s.c.set(func(st *OrderState) { st.Loading = true; st.Err = "" })
	o, err := s.api.Get(ctx, id)
	if err != nil {
		s.setErr(err, "Failed to fetch order")
		return err
	}
	s.c.set(func(st *OrderState) {
		st.Current = &o
		st.Loading = false
	})
	return nil
}

// Cancel asks the backend to cancel and reloads the current page.
func (s *OrderStore) Cancel(ctx context.Context, id int64) error {
	s.c.set(func(st *OrderState) { st.Loading = true; st.Err = "" })
	o, err := s.api.Cancel(ctx, id)
	if err != nil {
		s.setErr(err, "Failed to cancel order")
		return err
	}
	s.c.set(func(st *OrderState) {
		if st.Current != nil && st.Current.ID == o.ID {
			st.Current = &o
		}
	})
	return s.Fetch(ctx, s.State().Pagination.Page)
}

// Checkout places an order from the server-side cart. itemCount is the
// caller's view of the cart; zero is rejected without a request. Nothing
// else is cleared locally.
func (s *OrderStore) Checkout(ctx context.Context, req domain.CheckoutRequest, itemCount int) (domain.Order, error) {
	addr, err := validate.ShippingAddress(req.ShippingAddress)
	if err == nil && itemCount < 1 {
		err = ErrEmptyCart
	}
	if err != nil {
		msg := err.Error()
		s.c.set(func(st *OrderState) { st.Err = msg })
		return domain.Order{}, err
	}
	req.ShippingAddress = addr

	s.c.set(func(st *OrderState) { st.Loading = true; st.Err = "" })
	o, err := s.api.Checkout(ctx, req)
	if err != nil {
		s.setErr(err, "Failed to place order")
		return domain.Order{}, err
	}
	s.c.set(func(st *OrderState) {
		st.LastPlaced = &o
		st.Loading = false
	})
	return o, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !s.admin {
		return ErrNotAdmin
	}
	if !status.Valid() {
		err := &validate.Error{Field: "status", Message: "Unknown order status " + string(status)}
		s.c.set(func(st *OrderState) { st.Err = err.Message })
		return err
	}
	s.c.set(func(st *OrderState) { st.Loading = true; st.Err = "" })
	if _, err := s.api.UpdateStatus(ctx, id, status); err != nil {
		s.setErr(err, "Failed to update order status")
		return err
	}
	return s.Fetch(ctx, s.State().Pagination.Page)
}

func (s *OrderStore) ClearError() { s.c.set(func(st *OrderState) { st.Err = "" }) }
