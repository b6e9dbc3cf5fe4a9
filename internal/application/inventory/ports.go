package inventory

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza que el movimiento y el cambio de cantidad se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.InventoryRecordRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
