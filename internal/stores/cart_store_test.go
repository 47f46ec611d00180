package stores

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartMutationsRefetch(t *testing.T) {
	ctx := context.Background()
	f := newFakeCart()
	s := NewCartStore(f)

	require.NoError(t, s.Add(ctx, 7, 2))
	assert.Equal(t, 2, f.requests, "add then get")
	assert.Equal(t, f.snapshot().Total.String(), s.State().Cart.Total.String())
	assert.Equal(t, 1, s.State().ItemCount())

	require.NoError(t, s.UpdateQuantity(ctx, 7, 5))
	assert.Equal(t, 1, s.State().ItemCount())
	assert.Equal(t, 5, s.State().Cart.Cart.Items[0].Quantity)
	assert.Equal(t, "12.5", s.State().Cart.Total.String())

	require.NoError(t, s.Remove(ctx, 7))
	assert.Equal(t, 0, s.State().ItemCount())

	require.NoError(t, s.Add(ctx, 8, 1))
	before := f.requests
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, before+2, f.requests, "clear re-fetches too")
	assert.Empty(t, s.State().Cart.Cart.Items)
}

func TestUpdateQuantityBelowOneSendsNothing(t *testing.T) {
	f := newFakeCart()
	s := NewCartStore(f)

	err := s.UpdateQuantity(context.Background(), 7, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Zero(t, f.requests)

	require.ErrorIs(t, s.Add(context.Background(), 7, -1), ErrInvalidQuantity)
	assert.Zero(t, f.requests)
}

func TestCartFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFakeCart()
	s := NewCartStore(f)
	require.NoError(t, s.Add(ctx, 1, 1))
	prev := s.State().Cart

	f.failNext = apiErr(http.StatusBadRequest, "Insufficient stock. Available: 0")
	require.Error(t, s.Add(ctx, 2, 10))
	st := s.State()
	assert.Equal(t, "Insufficient stock. Available: 0", st.Err)
	assert.Same(t, prev, st.Cart)
	assert.False(t, st.Loading)

	f.failNext = errors.New("connection refused")
	require.Error(t, s.Remove(ctx, 1))
	assert.Equal(t, "Failed to remove item", s.State().Err)

	f.failGet = true
	require.Error(t, s.Fetch(ctx))
	assert.Equal(t, "Failed to fetch cart", s.State().Err)
	assert.Same(t, prev, s.State().Cart)
}
