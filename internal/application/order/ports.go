package order

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// TxRunner ejecuta una función en una transacción con los repositorios de pedidos y de stock,
// para que una transición y sus movimientos se confirmen juntos.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		recordRepo repository.InventoryRecordRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StockLedger es la parte del libro de stock que usan las transiciones con intención de stock.
// La implementa inventory.LedgerUseCase.
type StockLedger interface {
	ApplyInTx(
		ctx context.Context,
		recordRepo repository.InventoryRecordRepository,
		movRepo repository.StockMovementRepository,
		in inventory.MovementInput,
	) (*entity.InventoryRecord, *entity.StockMovement, error)
	Committed(ctx context.Context, movs ...*entity.StockMovement)
}

var _ StockLedger = (*inventory.LedgerUseCase)(nil)
