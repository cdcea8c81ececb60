package service_test

import (
	"testing"
	"time"

	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliver walks an order all the way to DELIVERED as admin.
func (f *fixture) deliver(t *testing.T, orderID int64) {
	t.Helper()
	for _, s := range []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err := f.orders.UpdateOrderStatus(f.ctx, f.admin, orderID, s)
		require.NoError(t, err)
	}
}

func TestOverviewStats(t *testing.T) {
	f := newFixture(t)
	delivered := f.twoSellerOrder(t) // 10 + 2*25
	f.twoSellerOrder(t)
	f.deliver(t, delivered.ID)

	stats, err := f.stats.Overview(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalSellers)
	assert.Equal(t, 4, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, "60", stats.TotalRevenue.String())

	_, err = f.stats.Overview(f.ctx, f.sellerA)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestMonthlySalesHasTwelveBuckets(t *testing.T) {
	f := newFixture(t)
	order := f.twoSellerOrder(t)
	f.deliver(t, order.ID)

	now := time.Now()
	sales, err := f.stats.MonthlySales(f.ctx, f.admin, 0)
	require.NoError(t, err)
	require.Len(t, sales, 12)

	for i, m := range sales {
		assert.Equal(t, i+1, m.Month)
		if m.Month == int(now.Month()) {
			assert.Equal(t, 1, m.Orders)
			assert.Equal(t, "60", m.Revenue.String())
		} else {
			assert.Zero(t, m.Orders)
		}
	}

	_, err = f.stats.MonthlySales(f.ctx, f.admin, 12)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSellerStats(t *testing.T) {
	f := newFixture(t)
	order := f.twoSellerOrder(t)
	itemA := itemOf(t, order, f.sellerA.UserID)
	for _, s := range []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err := f.orders.UpdateOrderItemStatus(f.ctx, f.sellerA, itemA.ID, s)
		require.NoError(t, err)
	}

	stats, err := f.stats.SellerStats(f.ctx, f.sellerA)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LiveProducts)
	assert.Zero(t, stats.OutOfStock)
	assert.Equal(t, 1, stats.ItemsByStatus[models.OrderStatusDelivered])
	assert.Zero(t, stats.ItemsByStatus[models.OrderStatusPending])
	assert.Contains(t, stats.ItemsByStatus, models.OrderStatusCancelled)
	assert.Equal(t, "10", stats.Revenue.String())

	_, err = f.stats.SellerStats(f.ctx, f.customer)
	assert.ErrorIs(t, err, service.ErrForbidden)
}
