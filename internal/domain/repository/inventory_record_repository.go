package repository

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// RecordFilter filtros para listar registros de inventario.
type RecordFilter struct {
	ProductID       string
	WarehouseID     string
	IncludeInactive bool
}

// InventoryRecordRepository define el puerto de persistencia del stock por producto y bodega.
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción; solo tienen efecto dentro de TxRunner.
type InventoryRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	GetByPair(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error)
	// LockOrCreate bloquea el registro del par; si no existe inserta candidate (cantidad 0) y lo bloquea.
	// created indica si el registro se creó en esta llamada.
	LockOrCreate(ctx context.Context, candidate *entity.InventoryRecord) (rec *entity.InventoryRecord, created bool, err error)
	Update(ctx context.Context, record *entity.InventoryRecord) error
	List(ctx context.Context, filter RecordFilter) ([]*entity.InventoryRecord, error)
}
