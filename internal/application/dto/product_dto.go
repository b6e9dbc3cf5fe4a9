package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code        string          `json:"code" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED OUT_OF_STOCK"`
	MinStock    int64           `json:"min_stock" validate:"gte=0"`
	MaxStock    int64           `json:"max_stock" validate:"gte=0"`
}

// UpdateProductRequest entrada para actualizar un producto. El código no se modifica.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price" validate:"omitempty,gte=0"`
	Status      *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED OUT_OF_STOCK"`
	MinStock    *int64           `json:"min_stock" validate:"omitempty,gte=0"`
	MaxStock    *int64           `json:"max_stock" validate:"omitempty,gte=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Status      string          `json:"status"`
	MinStock    int64           `json:"min_stock"`
	MaxStock    int64           `json:"max_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
