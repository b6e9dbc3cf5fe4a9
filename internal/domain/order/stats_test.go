package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/order"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tm
}

func TestComputeStats(t *testing.T) {
	orders := []*entity.Order{
		{Status: entity.OrderStatusPending, PaymentStatus: entity.PaymentStatusPending, GrandTotal: dec("50")},
		{Status: entity.OrderStatusDelivered, PaymentStatus: entity.PaymentStatusPaid, GrandTotal: dec("100")},
		{Status: entity.OrderStatusShipped, PaymentStatus: entity.PaymentStatusPaid, GrandTotal: dec("35.50")},
		{Status: entity.OrderStatusCancelled, PaymentStatus: entity.PaymentStatusFailed, GrandTotal: dec("80")},
	}
	st := order.ComputeStats(orders)

	assert.Equal(t, int64(4), st.TotalOrders)
	assert.Equal(t, int64(1), st.PendingOrders)
	assert.Equal(t, int64(1), st.DeliveredOrders)
	assert.Equal(t, int64(1), st.CancelledOrders)
	assert.Equal(t, int64(0), st.ByStatus[entity.OrderStatusRefunded])
	assert.True(t, st.TotalRevenue.Equal(dec("135.50")))
	assert.True(t, st.AverageOrderValue.Equal(dec("67.75")))
}

func TestComputeStats_SinPedidos(t *testing.T) {
	st := order.ComputeStats(nil)
	assert.Equal(t, int64(0), st.TotalOrders)
	assert.True(t, st.AverageOrderValue.IsZero())
	assert.Len(t, st.ByStatus, len(entity.OrderStatuses))
}
