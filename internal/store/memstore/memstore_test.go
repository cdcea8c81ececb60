package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *models.User {
	return &models.User{Name: "Cara", Email: email, PasswordHash: "x", Role: models.RoleCustomer, Status: models.UserStatusActive}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(tx service.Repository) error {
		return tx.CreateUser(ctx, newUser("kept@example.com"))
	}))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx service.Repository) error {
		if err := tx.CreateUser(ctx, newUser("dropped@example.com")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetUserByEmail(ctx, "kept@example.com")
	assert.NoError(t, err)
	_, err = s.GetUserByEmail(ctx, "dropped@example.com")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestWithTxCancelledContextKeepsNothing(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithTx(ctx, func(tx service.Repository) error {
		if err := tx.CreateUser(ctx, newUser("late@example.com")); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.GetUserByEmail(context.Background(), "late@example.com")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestClearCartItemsCountsUnits(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("cart@example.com")
	require.NoError(t, s.CreateUser(ctx, u))
	cart, err := s.CreateCart(ctx, u.ID)
	require.NoError(t, err)

	for i, qty := range []int{2, 3} {
		p := &models.Product{Name: "Napa", Slug: "napa-" + string(rune('a'+i)), SellerID: u.ID}
		require.NoError(t, s.CreateProduct(ctx, p))
		require.NoError(t, s.UpsertCartItem(ctx, cart.ID, p.ID, qty))
	}

	cleared, err := s.ClearCartItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CartCleared{Lines: 2, Units: 5}, cleared)

	lines, err := s.ListCartLines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
