package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto (los gestiona el catálogo).
const (
	ProductStatusActive       = "ACTIVE"
	ProductStatusInactive     = "INACTIVE"
	ProductStatusDiscontinued = "DISCONTINUED"
	ProductStatusOutOfStock   = "OUT_OF_STOCK"
)

// Product representa un producto del catálogo.
// Code es único e inmutable; MinStock/MaxStock son los umbrales por defecto para alertas y estadísticas.
type Product struct {
	ID          string
	Code        string
	Name        string
	Description string
	BasePrice   decimal.Decimal // precio base de venta (>= 0)
	Status      string
	MinStock    int64
	MaxStock    int64 // 0 = sin tope de sobrestock
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMaxStock indica si el producto define tope de sobrestock. max_stock = 0 significa "sin tope",
// así que un producto con máximo 0 nunca cuenta como sobrestock.
func (p Product) HasMaxStock() bool {
	return p.MaxStock > 0
}

// IsValidProductStatus indica si el estado pertenece al catálogo de estados.
func IsValidProductStatus(s string) bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued, ProductStatusOutOfStock:
		return true
	}
	return false
}
