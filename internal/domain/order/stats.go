package order

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// Stats agrega los pedidos. Ingresos = suma del total de los pedidos pagados.
type Stats struct {
	TotalOrders       int64
	ByStatus          map[string]int64
	PendingOrders     int64
	DeliveredOrders   int64
	CancelledOrders   int64
	PaidOrders        int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
}

// ComputeStats calcula las estadísticas sobre el conjunto de pedidos.
func ComputeStats(orders []*entity.Order) Stats {
	st := Stats{ByStatus: make(map[string]int64, len(entity.OrderStatuses)), TotalRevenue: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, s := range entity.OrderStatuses {
		st.ByStatus[s] = 0
	}
	for _, o := range orders {
		st.TotalOrders++
		st.ByStatus[o.Status]++
		if o.PaymentStatus == entity.PaymentStatusPaid {
			st.PaidOrders++
			st.TotalRevenue = st.TotalRevenue.Add(o.GrandTotal)
		}
	}
	st.PendingOrders = st.ByStatus[entity.OrderStatusPending]
	st.DeliveredOrders = st.ByStatus[entity.OrderStatusDelivered]
	st.CancelledOrders = st.ByStatus[entity.OrderStatusCancelled]
	if st.PaidOrders > 0 {
		st.AverageOrderValue = st.TotalRevenue.Div(decimal.NewFromInt(st.PaidOrders)).Round(2)
	}
	return st
}
