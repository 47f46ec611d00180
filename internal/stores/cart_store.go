package stores

import (
	"context"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/validate"
)

// ErrInvalidQuantity is returned, without any request, for quantities
// below 1.
var ErrInvalidQuantity = validate.ErrQuantity

type CartAPI interface {
	Get(ctx context.Context) (domain.CartResponse, error)
	AddItem(ctx context.Context, req domain.AddToCartRequest) (domain.Cart, error)
	UpdateItem(ctx context.Context, productID int64, qty int) (domain.Cart, error)
	RemoveItem(ctx context.Context, productID int64) (domain.Cart, error)
	Clear(ctx context.Context) error
}

type CartState struct {
	Cart    *domain.CartResponse
	Loading bool
	Err     string
}

// ItemCount is the number of cart lines, 0 before the first fetch.
func (s CartState) ItemCount() int {
	if s.Cart == nil {
		return 0
	}
	return s.Cart.ItemCount
}

type CartStore struct {
	api CartAPI
	c   container[CartState]
}

func NewCartStore(a CartAPI) *CartStore { return &CartStore{api: a} }

func (s *CartStore) State() CartState { return s.c.get() }

func (s *CartStore) Subscribe(fn func(CartState)) (cancel func()) { return s.c.subscribe(fn) }

// Fetch replaces the snapshot; on failure the previous snapshot stays.
func (s *CartStore) Fetch(ctx context.Context) error {
	s.c.set(func(st *CartState) { st.Loading = true; st.Err = "" })
	cart, err := s.api.Get(ctx)
	if err != nil {
		s.fail(err, "Failed to fetch cart")
		return err
	}
	s.c.set(func(st *CartState) {
		st.Cart = &cart
		st.Loading = false
	})
	return nil
}

func (s *CartStore) fail(err error, fallback string) {
	s.c.set(func(st *CartState) {
		st.Err = api.Message(err, fallback)
		st.Loading = false
	})
}

// mutate runs call and then re-fetches the whole cart so totals always
// come from the backend.
func (s *CartStore) mutate(ctx context.Context, fallback string, call func() error) error {
	s.c.set(func(st *CartState) { st.Loading = true; st.Err = "" })
	if err := call(); err != nil {
		s.fail(err, fallback)
		return err
	}
	return s.Fetch(ctx)
}

func (s *CartStore) Add(ctx context.Context, productID int64, qty int) error {
	if err := validate.Quantity(qty); err != nil {
		s.c.set(func(st *CartState) { st.Err = err.Error() })
		return err
	}
	return s.mutate(ctx, "Failed to add to cart", func() error {
		_, err := s.api.AddItem(ctx, domain.AddToCartRequest{ProductID: productID, Quantity: qty})
		return err
	})
}

func (s *CartStore) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	if err := validate.Quantity(qty); err != nil {
		s.c.set(func(st *CartState) { st.Err = err.Error() })
		return err
	}
	return s.mutate(ctx, "Failed to update quantity", func() error {
		_, err := s.api.UpdateItem(ctx, productID, qty)
		return err
	})
}

func (s *CartStore) Remove(ctx context.Context, productID int64) error {
	return s.mutate(ctx, "Failed to remove item", func() error {
		_, err := s.api.RemoveItem(ctx, productID)
		return err
	})
}

func (s *CartStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, "Failed to clear cart", func() error {
		return s.api.Clear(ctx)
	})
}

func (s *CartStore) ClearError() { s.c.set(func(st *CartState) { st.Err = "" }) }
