package stores

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/validate"
)

func TestCheckoutLocalChecks(t *testing.T) {
	ctx := context.Background()
	f := &fakeOrders{}
	s := NewOrderStore(f)

	_, err := s.Checkout(ctx, domain.CheckoutRequest{ShippingAddress: "  "}, 2)
	require.True(t, validate.IsValidation(err))
	assert.Equal(t, "Please enter a shipping address", s.State().Err)

	_, err = s.Checkout(ctx, domain.CheckoutRequest{ShippingAddress: "1 Main St"}, 0)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, "Your cart is empty", s.State().Err)
	assert.Zero(t, f.requests)

	o, err := s.Checkout(ctx, domain.CheckoutRequest{ShippingAddress: " 1 Main St "}, 1)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", o.ShippingAddress)
	assert.Equal(t, o.ID, s.State().LastPlaced.ID)
	assert.Empty(t, s.State().Err)
}

func TestOrderHistoryAndCancel(t *testing.T) {
	ctx := context.Background()
	f := &fakeOrders{}
	for i := 0; i < 12; i++ {
		f.orders = append(f.orders, domain.Order{ID: int64(i + 1), Status: domain.OrderPending})
	}
	s := NewOrderStore(f)

	require.NoError(t, s.Fetch(ctx, 0))
	assert.Equal(t, DefaultOrderPageSize, f.lastSize)
	assert.Equal(t, 2, s.State().Pagination.TotalPages)

	require.NoError(t, s.GotoPage(ctx, 1))
	require.Len(t, s.State().Orders, 2)

	require.NoError(t, s.Cancel(ctx, 11))
	assert.Equal(t, 1, f.lastPage, "cancel reloads the current page")
	assert.Equal(t, domain.OrderCancelled, s.State().Orders[0].Status)

	f.cancelErr = apiErr(http.StatusBadRequest, "Order cannot be cancelled in status SHIPPED")
	require.Error(t, s.Cancel(ctx, 12))
	assert.Equal(t, "Order cannot be cancelled in status SHIPPED", s.State().Err)

	require.ErrorIs(t, s.UpdateStatus(ctx, 1, domain.OrderShipped), ErrNotAdmin)
}

func TestAdminOrderStore(t *testing.T) {
	ctx := context.Background()
	f := &fakeOrders{orders: []domain.Order{{ID: 1, Status: domain.OrderPending}}}
	s := NewAdminOrderStore(f)

	require.NoError(t, s.Fetch(ctx, 0))
	assert.True(t, f.admin)
	assert.Equal(t, DefaultAdminOrderPageSize, f.lastSize)

	require.NoError(t, s.UpdateStatus(ctx, 1, domain.OrderShipped))
	assert.Equal(t, domain.OrderShipped, s.State().Orders[0].Status)

	before := f.requests
	require.Error(t, s.UpdateStatus(ctx, 1, "LOST"))
	assert.Equal(t, before, f.requests)

	require.NoError(t, s.FetchOrder(ctx, 1))
	assert.Equal(t, int64(1), s.State().Current.ID)
}
