package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos. From/To nil no acotan; Limit 0 no limita.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	Type        string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// StockMovementRepository define el puerto del log de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos más recientes primero.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	Count(ctx context.Context) (int64, error)
}
