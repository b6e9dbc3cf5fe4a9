package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// OrderFilter filtros para listar pedidos. Limit 0 no limita.
type OrderFilter struct {
	Status        string
	CustomerEmail string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// OrderRepository define el puerto de persistencia de pedidos (cabecera + ítems).
// Create devuelve domain.ErrDuplicate si el número de pedido ya existe.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	// List devuelve los pedidos más recientes primero.
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	// Update persiste los campos de cabecera, estados y totales; los ítems no cambian.
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
}
