package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	domainorder "github.com/jhoicas/stock-orders-api/internal/domain/order"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// Get obtiene un pedido por ID (cache-aside: caché, luego repositorio).
func (uc *LifecycleUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	cached, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.metrics.SideEffectFailed("cache")
		uc.log.Warn().Err(err).Str("order_id", id).Msg("lectura de caché fallida")
	}
	if cached != nil {
		return toOrderResponse(cached), nil
	}
	seen := uc.epoch.current()
	o, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
	}
	stored, err := uc.epoch.setIfUnchanged(seen, func() error { return uc.cache.Set(ctx, o) })
	if err != nil {
		uc.metrics.SideEffectFailed("cache")
		uc.log.Warn().Err(err).Str("order_id", id).Msg("escritura de caché fallida")
	}
	if !stored {
		uc.log.Debug().Str("order_id", id).Msg("invalidación durante la lectura, no se cachea")
	}
	return toOrderResponse(o), nil
}

// cacheEpoch cuenta las invalidaciones del proceso. Una lectura solo repuebla la caché si no hubo
// invalidación mientras cargaba del repositorio; si no, podría dejar un pedido viejo hasta el TTL.
type cacheEpoch struct {
	mu sync.RWMutex
	n  uint64
}

func (e *cacheEpoch) current() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.n
}

// bump se llama antes de invalidar la entrada.
func (e *cacheEpoch) bump() {
	e.mu.Lock()
	e.n++
	e.mu.Unlock()
}

// setIfUnchanged ejecuta set solo si no hubo invalidaciones desde seen. La comprobación y la
// escritura ocurren bajo el mismo lock que bump, así que una invalidación posterior siempre borra.
func (e *cacheEpoch) setIfUnchanged(seen uint64, set func() error) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.n != seen {
		return false, nil
	}
	return true, set()
}

// GetByNumber obtiene un pedido por su número legible.
func (uc *LifecycleUseCase) GetByNumber(ctx context.Context, orderNumber string) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, orderNumber)
	}
	return toOrderResponse(o), nil
}

// List lista pedidos (más recientes primero) con filtros opcionales.
func (uc *LifecycleUseCase) List(ctx context.Context, filter repository.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Status != "" && !domainorder.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	list, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Stats calcula las estadísticas de pedidos sobre todos los pedidos.
func (uc *LifecycleUseCase) Stats(ctx context.Context) (*dto.OrderStatsResponse, error) {
	all, err := uc.orderRepo.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, err
	}
	st := domainorder.ComputeStats(all)
	return &dto.OrderStatsResponse{
		TotalOrders:       st.TotalOrders,
		ByStatus:          st.ByStatus,
		PendingOrders:     st.PendingOrders,
		DeliveredOrders:   st.DeliveredOrders,
		CancelledOrders:   st.CancelledOrders,
		TotalRevenue:      st.TotalRevenue,
		AverageOrderValue: st.AverageOrderValue,
	}, nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductCode:     it.ProductCode,
			ProductName:     it.ProductName,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
			TotalPrice:      it.TotalPrice,
		})
	}
	return &dto.OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Notes:           o.Notes,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		DiscountAmount:  o.DiscountAmount,
		TaxAmount:       o.TaxAmount,
		GrandTotal:      o.GrandTotal,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
