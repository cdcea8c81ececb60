package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s, mock
}

var productCols = []string{
	"id", "seller_id", "name", "slug", "description", "manufacturer", "dosage_form",
	"strength", "price", "discount_price", "stock", "created_at", "updated_at",
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE cart_items SET quantity = ?")).
			WithArgs(4, sqlmock.AnyArg(), 9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithTx(ctx, func(tx service.Repository) error {
			return tx.SetCartItemQuantity(ctx, 9, 4)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		s, mock := newMockStore(t)
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithTx(ctx, func(tx service.Repository) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested joins outer", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := s.WithTx(ctx, func(tx service.Repository) error {
			return tx.WithTx(ctx, func(service.Repository) error { return nil })
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'uq_users_email'"})

	err := s.CreateUser(context.Background(), &models.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetProductNullableColumns(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products p WHERE p.id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, 2, "Napa", "napa", nil, "Beximco", nil, nil, "10.00", "8.50", 5, now, now))

	p, err := s.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, p.Description)
	require.NotNil(t, p.Manufacturer)
	assert.Equal(t, "Beximco", *p.Manufacturer)
	require.NotNil(t, p.DiscountPrice)
	assert.Equal(t, "8.5", p.EffectivePrice().String())
}

func TestUpsertCartItemIncrements(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)")).
		WithArgs(3, 7, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.UpsertCartItem(context.Background(), 3, 7, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockCartByUser(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM carts WHERE user_id = ? FOR UPDATE")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).AddRow(4, 11, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM carts WHERE user_id = ? FOR UPDATE")).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))

	cart, err := s.LockCartByUser(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cart.ID)

	_, err = s.LockCartByUser(context.Background(), 12)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestClearCartItemsReportsLinesAndUnits(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = ? FOR UPDATE")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count", "units"}).AddRow(3, 7))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE cart_id = ?")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 3))

	cleared, err := s.ClearCartItems(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, service.CartCleared{Lines: 3, Units: 7}, cleared)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("referenced by orders", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
			WithArgs(5).
			WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
		assert.ErrorIs(t, s.DeleteProduct(ctx, 5), service.ErrConflict)
	})

	t.Run("missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, s.DeleteProduct(ctx, 5), service.ErrNotFound)
	})
}

func TestCreateOrderItemsAssignsIDs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).WillReturnResult(sqlmock.NewResult(101, 1))

	items := []models.OrderItem{{ProductID: 1}, {ProductID: 2}}
	require.NoError(t, s.CreateOrderItems(context.Background(), 50, items))
	assert.Equal(t, int64(100), items[0].ID)
	assert.Equal(t, int64(101), items[1].ID)
	assert.Equal(t, int64(50), items[1].OrderID)
}

func TestListOrdersForSeller(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders o WHERE 1 = 1 AND EXISTS")).
		WithArgs(7, "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	orderCols := []string{
		"id", "order_number", "user_id", "shipping_address_id", "total_amount", "discount_amount",
		"shipping_fee", "final_amount", "status", "created_at", "updated_at",
		"a_id", "full_name", "phone", "address_line1", "address_line2", "city", "district",
		"postal_code", "label", "a_created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ? OFFSET ?")).
		WithArgs(7, "PENDING", 10, 0).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			30, "MS-1", 2, 40, "20.00", "0.00", "5.00", "25.00", "PENDING", now, now,
			40, "Cara", "+880", "12 Lake Road", nil, "Dhaka", nil, nil, nil, now,
		))

	itemCols := []string{
		"id", "order_id", "product_id", "seller_id", "product_name", "quantity", "unit_price", "subtotal",
		"status", "created_at", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id IN (?)")).
		WithArgs(30).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(1, 30, 9, 7, "Napa", 2, "10.00", "20.00", "PENDING", now, now).
			AddRow(2, 30, 8, 6, "Fexo", 1, "5.00", "5.00", "PENDING", now, now))

	orders, total, err := s.ListOrdersForSeller(context.Background(), service.SellerOrderFilter{
		SellerID: 7, Status: models.OrderStatusPending, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "25", orders[0].FinalAmount.String())
	require.NotNil(t, orders[0].ShippingAddress)
	assert.Nil(t, orders[0].ShippingAddress.AddressLine2)
	assert.Len(t, orders[0].Items, 2, "the store returns every item; filtering happens in the service")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlySalesQueryBounds(t *testing.T) {
	s, mock := newMockStore(t)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY MONTH(created_at)")).
		WithArgs("DELIVERED", from, from.AddDate(1, 0, 0)).
		WillReturnRows(sqlmock.NewRows([]string{"month", "orders", "revenue"}).AddRow(3, 2, "150.00"))

	sales, err := s.MonthlySales(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 3, sales[0].Month)
	assert.Equal(t, "150", sales[0].Revenue.String())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestUpdateUserStatus(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status = ?, updated_at = ? WHERE id = ?")).
		WithArgs(models.UserStatusBanned, sqlmock.AnyArg(), 8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateUserStatus(context.Background(), 8, models.UserStatusBanned))
	assert.NoError(t, mock.ExpectationsWereMet())
}
