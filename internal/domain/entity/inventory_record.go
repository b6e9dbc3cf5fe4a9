package entity

import "time"

// InventoryRecord representa el stock de un producto en una bodega.
// Quantity es siempre la suma de los deltas de sus movimientos y nunca es negativa.
// Active=false es el borrado lógico: el registro se conserva porque lo referencian movimientos.
type InventoryRecord struct {
	ID          string
	ProductID   string
	WarehouseID string
	Quantity    int64
	Active      bool
	CreatedAt   time.Time
	LastUpdated time.Time
}
