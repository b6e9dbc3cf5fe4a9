package order

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// DefaultTaxRate es la tasa de impuesto aplicada a la base (subtotal + envío - descuento).
var DefaultTaxRate = decimal.NewFromFloat(0.20)

var hundred = decimal.NewFromInt(100)

// Totals son las cifras monetarias de un pedido.
type Totals struct {
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}

// ItemTotal = cantidad × precio × (1 - descuento/100), redondeado a 2 decimales.
func ItemTotal(quantity int64, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return decimal.NewFromInt(quantity).Mul(unitPrice).Mul(factor).Round(2)
}

// ComputeTotals es la única fuente de las cifras del pedido.
// Cada ítem se redondea antes de sumar. La base del impuesto puede quedar negativa si el descuento
// supera subtotal + envío; no se acota en cero.
func ComputeTotals(items []entity.OrderItem, shippingCost, discountAmount, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(ItemTotal(it.Quantity, it.UnitPrice, it.DiscountPercent))
	}
	base := subtotal.Add(shippingCost).Sub(discountAmount)
	tax := base.Mul(taxRate)
	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		GrandTotal: base.Add(tax),
	}
}

// Reprice recalcula el total de cada ítem y las cifras de cabecera del pedido.
func Reprice(o *entity.Order, taxRate decimal.Decimal) {
	for i := range o.Items {
		it := &o.Items[i]
		it.TotalPrice = ItemTotal(it.Quantity, it.UnitPrice, it.DiscountPercent)
	}
	t := ComputeTotals(o.Items, o.ShippingCost, o.DiscountAmount, taxRate)
	o.Subtotal = t.Subtotal
	o.TaxAmount = t.TaxAmount
	o.GrandTotal = t.GrandTotal
}
