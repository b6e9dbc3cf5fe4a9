package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusRefunded   = "REFUNDED"
)

// Estados de pago.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

// OrderStatuses y PaymentStatuses listan los valores válidos.
var (
	OrderStatuses = []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded,
	}
	PaymentStatuses = []string{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded}
)

// Order es la cabecera del pedido (raíz del agregado). Los ítems no cambian después de la creación.
// Subtotal, TaxAmount y GrandTotal se recalculan siempre con order.ComputeTotals.
type Order struct {
	ID              string
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	BillingAddress  string
	Notes           string
	ShippingCost    decimal.Decimal
	DiscountAmount  decimal.Decimal
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	GrandTotal      decimal.Decimal
	Status          string
	PaymentStatus   string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem guarda una foto del producto al momento del pedido (código, nombre y precio no se re-consultan).
type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	ProductCode     string
	ProductName     string
	UnitPrice       decimal.Decimal
	Quantity        int64
	DiscountPercent decimal.Decimal
	TotalPrice      decimal.Decimal
}

// Clone devuelve una copia profunda (los almacenes en memoria no deben compartir el slice de ítems).
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}
