package service_test

import (
	"testing"

	"github.com/01moynul/medistore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCartIncrementsExistingLine(t *testing.T) {
	f := newFixture(t)
	p := f.mustProduct(t, f.sellerA, "Napa Extra", "12.50")

	f.mustAdd(t, f.customer, p.ID, 2)
	view, err := f.carts.AddToCart(f.ctx, f.customer, p.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 5, view.TotalItems)
	assert.Equal(t, "62.5", view.Subtotal.String())
	require.NotNil(t, view.ID)
}

func TestAddToCartValidation(t *testing.T) {
	f := newFixture(t)
	p := f.mustProduct(t, f.sellerA, "Napa Extra", "12.50")

	_, err := f.carts.AddToCart(f.ctx, f.customer, p.ID, 0)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.carts.AddToCart(f.ctx, f.customer, 0, 1)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.carts.AddToCart(f.ctx, f.customer, 9999, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Nothing above should have created a cart.
	view, err := f.carts.GetMyCart(f.ctx, f.customer)
	require.NoError(t, err)
	assert.Nil(t, view.ID)
}

func TestGetMyCartWithoutCart(t *testing.T) {
	f := newFixture(t)

	view, err := f.carts.GetMyCart(f.ctx, f.customer)
	require.NoError(t, err)

	assert.Nil(t, view.ID)
	assert.Equal(t, f.customer.UserID, view.UserID)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalItems)
	assert.True(t, view.Subtotal.IsZero())
}

func TestGetMyCartUsesDiscountPriceAndNewestFirst(t *testing.T) {
	f := newFixture(t)
	first := f.mustProduct(t, f.sellerA, "Seclo 20", "100", "80")
	second := f.mustProduct(t, f.sellerB, "Ace Plus", "10")

	f.mustAdd(t, f.customer, first.ID, 1)
	f.mustAdd(t, f.customer, second.ID, 3)

	view, err := f.carts.GetMyCart(f.ctx, f.customer)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, second.ID, view.Items[0].ProductID)
	assert.Equal(t, 4, view.TotalItems)
	assert.Equal(t, "110", view.Subtotal.String())
}

func TestUpdateCartItemQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.mustProduct(t, f.sellerA, "Napa Extra", "5")
	f.mustAdd(t, f.customer, p.ID, 2)

	view, err := f.carts.GetMyCart(f.ctx, f.customer)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	t.Run("overwrites", func(t *testing.T) {
		view, err := f.carts.UpdateCartItemQuantity(f.ctx, f.customer, itemID, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, view.TotalItems)
	})

	t.Run("rejects zero and negative", func(t *testing.T) {
		for _, qty := range []int{0, -3} {
			_, err := f.carts.UpdateCartItemQuantity(f.ctx, f.customer, itemID, qty)
			assert.ErrorIs(t, err, service.ErrValidation)
		}
		view, err := f.carts.GetMyCart(f.ctx, f.customer)
		require.NoError(t, err)
		assert.Equal(t, 7, view.Items[0].Quantity)
	})

	t.Run("someone else's item", func(t *testing.T) {
		f.mustAdd(t, f.other, p.ID, 1)
		_, err := f.carts.UpdateCartItemQuantity(f.ctx, f.other, itemID, 1)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("no cart", func(t *testing.T) {
		_, err := f.carts.UpdateCartItemQuantity(f.ctx, f.sellerB, itemID, 1)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestRemoveCartItem(t *testing.T) {
	f := newFixture(t)
	a := f.mustProduct(t, f.sellerA, "Napa", "5")
	b := f.mustProduct(t, f.sellerA, "Fexo 120", "9")
	f.mustAdd(t, f.customer, a.ID, 1)
	f.mustAdd(t, f.customer, b.ID, 1)

	view, err := f.carts.GetMyCart(f.ctx, f.customer)
	require.NoError(t, err)

	_, err = f.carts.RemoveCartItem(f.ctx, f.other, view.Items[0].ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	view, err = f.carts.RemoveCartItem(f.ctx, f.customer, view.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, a.ID, view.Items[0].ProductID)
}

func TestClearMyCartKeepsCartRow(t *testing.T) {
	f := newFixture(t)
	p := f.mustProduct(t, f.sellerA, "Napa", "5")

	view, err := f.carts.ClearMyCart(f.ctx, f.customer)
	require.NoError(t, err)
	assert.Nil(t, view.ID)

	f.mustAdd(t, f.customer, p.ID, 4)
	view, err = f.carts.ClearMyCart(f.ctx, f.customer)
	require.NoError(t, err)
	assert.NotNil(t, view.ID)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalItems)
}

func TestGetOrCreateCartIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first, err := f.carts.GetOrCreateCart(f.ctx, f.customer.UserID)
	require.NoError(t, err)
	second, err := f.carts.GetOrCreateCart(f.ctx, f.customer.UserID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}
