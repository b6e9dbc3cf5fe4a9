package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest ítem al crear un pedido. UnitPrice vacío toma el precio base del producto.
type OrderItemRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        int64            `json:"quantity" validate:"gte=1"`
	UnitPrice       *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	DiscountPercent decimal.Decimal  `json:"discount_percent" validate:"gte=0,lte=100"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerPhone   string             `json:"customer_phone" validate:"max=50"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	BillingAddress  string             `json:"billing_address"`
	Notes           string             `json:"notes"`
	ShippingCost    decimal.Decimal    `json:"shipping_cost" validate:"gte=0"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount" validate:"gte=0"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest body para PUT /api/orders/:id. Solo campos de cabecera; los ítems no cambian.
type UpdateOrderRequest struct {
	CustomerName    *string          `json:"customer_name" validate:"omitempty,min=1,max=200"`
	CustomerEmail   *string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   *string          `json:"customer_phone" validate:"omitempty,max=50"`
	ShippingAddress *string          `json:"shipping_address" validate:"omitempty,min=1"`
	BillingAddress  *string          `json:"billing_address"`
	Notes           *string          `json:"notes"`
	ShippingCost    *decimal.Decimal `json:"shipping_cost" validate:"omitempty,gte=0"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount" validate:"omitempty,gte=0"`
}

// FulfillmentIntent descuenta stock por ítem al entregar el pedido.
type FulfillmentIntent struct {
	WarehouseID  string `json:"warehouse_id" validate:"required"`
	MovementType string `json:"movement_type" validate:"omitempty,oneof=OUT SALE"`
}

// RestockIntent reingresa stock por ítem (RETURN) al reembolsar el pedido.
type RestockIntent struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status      string             `json:"status" validate:"required,oneof=PENDING CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	Fulfillment *FulfillmentIntent `json:"fulfillment" validate:"omitempty"`
	Restock     *RestockIntent     `json:"restock" validate:"omitempty"`
}

// UpdatePaymentStatusRequest body para PATCH /api/orders/:id/payment-status.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=PENDING PAID FAILED REFUNDED"`
}

// OrderItemResponse ítem del pedido (foto del producto al crear).
type OrderItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductCode     string          `json:"product_code"`
	ProductName     string          `json:"product_name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	ShippingAddress string              `json:"shipping_address"`
	BillingAddress  string              `json:"billing_address,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	GrandTotal      decimal.Decimal     `json:"grand_total"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderStatsResponse estadísticas agregadas de pedidos.
type OrderStatsResponse struct {
	TotalOrders       int64            `json:"total_orders"`
	ByStatus          map[string]int64 `json:"by_status"`
	PendingOrders     int64            `json:"pending_orders"`
	DeliveredOrders   int64            `json:"delivered_orders"`
	CancelledOrders   int64            `json:"cancelled_orders"`
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
}
