package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN          = "IN"
	MovementTypeOUT         = "OUT"
	MovementTypePURCHASE    = "PURCHASE"
	MovementTypeSALE        = "SALE"
	MovementTypeRETURN      = "RETURN"
	MovementTypeDAMAGE      = "DAMAGE"
	MovementTypeTRANSFERIN  = "TRANSFER_IN"
	MovementTypeTRANSFEROUT = "TRANSFER_OUT"
	MovementTypeADJUSTMENT  = "ADJUSTMENT"
)

// MovementTypes lista todos los tipos admitidos, en el orden en que se documentan.
var MovementTypes = []string{
	MovementTypeIN, MovementTypeOUT, MovementTypePURCHASE, MovementTypeSALE, MovementTypeRETURN,
	MovementTypeDAMAGE, MovementTypeTRANSFERIN, MovementTypeTRANSFEROUT, MovementTypeADJUSTMENT,
}

// StockMovement es un registro inmutable de un cambio de cantidad. Las correcciones son movimientos nuevos.
type StockMovement struct {
	ID             string
	InventoryID    string
	ProductID      string
	WarehouseID    string
	Type           string
	Quantity       int64 // magnitud (> 0)
	Delta          int64 // cambio con signo aplicado al registro
	QuantityBefore int64
	QuantityAfter  int64
	Reference      string
	Source         string
	CreatedBy      string
	CreatedAt      time.Time
}
