package dto

import "time"

// RecordMovementRequest body para POST /api/inventory/movements.
// Para ADJUSTMENT, Quantity es el delta con signo (distinto de cero); para el resto es la magnitud (> 0).
type RecordMovementRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=IN OUT PURCHASE SALE RETURN DAMAGE TRANSFER_IN TRANSFER_OUT ADJUSTMENT"`
	Quantity    int64  `json:"quantity" validate:"required"`
	Reference   string `json:"reference" validate:"max=200"`
	Source      string `json:"source" validate:"max=100"`
}

// AdjustQuantityRequest body para PATCH /api/inventory/:id/adjust.
type AdjustQuantityRequest struct {
	Adjustment int64  `json:"adjustment" validate:"required"`
	Reference  string `json:"reference" validate:"max=200"`
}

// CreateRecordRequest body para POST /api/inventory.
type CreateRecordRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
}

// UpdateRecordRequest body para PUT /api/inventory/:id (cantidad absoluta).
type UpdateRecordRequest struct {
	Quantity int64 `json:"quantity" validate:"gte=0"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Quantity        int64  `json:"quantity" validate:"gt=0"`
	Reference       string `json:"reference" validate:"max=200"`
}

// InventoryRecordResponse registro de inventario con datos del catálogo.
type InventoryRecordResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductCode   string    `json:"product_code"`
	ProductName   string    `json:"product_name"`
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int64     `json:"quantity"`
	MinStock      int64     `json:"min_stock"`
	MaxStock      int64     `json:"max_stock"`
	StockStatus   string    `json:"stock_status"`
	Active        bool      `json:"active"`
	LastUpdated   time.Time `json:"last_updated"`
}

// MovementResponse movimiento de stock.
type MovementResponse struct {
	ID             string    `json:"id"`
	InventoryID    string    `json:"inventory_id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	Type           string    `json:"type"`
	Quantity       int64     `json:"quantity"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	Reference      string    `json:"reference,omitempty"`
	Source         string    `json:"source,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferResponse resultado de una transferencia entre bodegas.
type TransferResponse struct {
	From InventoryRecordResponse `json:"from"`
	To   InventoryRecordResponse `json:"to"`
}

// StockAlertResponse alerta de stock derivada.
type StockAlertResponse struct {
	InventoryID     string `json:"inventory_id"`
	ProductID       string `json:"product_id"`
	ProductCode     string `json:"product_code"`
	ProductName     string `json:"product_name"`
	WarehouseID     string `json:"warehouse_id"`
	WarehouseName   string `json:"warehouse_name"`
	CurrentQuantity int64  `json:"current_quantity"`
	MinThreshold    int64  `json:"min_threshold"`
	AlertType       string `json:"alert_type"`
	Severity        string `json:"severity"`
	Message         string `json:"message"`
}

// InventoryStatsResponse estadísticas agregadas del inventario.
type InventoryStatsResponse struct {
	TotalProducts      int64 `json:"total_products"`
	TotalQuantity      int64 `json:"total_quantity"`
	LowStockProducts   int64 `json:"low_stock_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	OverstockProducts  int64 `json:"overstock_products"`
	TotalMovements     int64 `json:"total_movements"`
}
