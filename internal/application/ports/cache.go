package ports

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// OrderCache define el puerto de caché de pedidos (cache-aside sobre GetByID).
// Get devuelve (nil, nil) cuando no hay entrada.
type OrderCache interface {
	Get(ctx context.Context, id string) (*entity.Order, error)
	Set(ctx context.Context, order *entity.Order) error
	Invalidate(ctx context.Context, id string) error
}

// NoopOrderCache no guarda nada (caché deshabilitada).
type NoopOrderCache struct{}

// Get siempre falla la búsqueda.
func (NoopOrderCache) Get(context.Context, string) (*entity.Order, error) { return nil, nil }

// Set no hace nada.
func (NoopOrderCache) Set(context.Context, *entity.Order) error { return nil }

// Invalidate no hace nada.
func (NoopOrderCache) Invalidate(context.Context, string) error { return nil }
