package order

import (
	"fmt"
	"sort"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// statusTransitions: transiciones legales del estado del pedido. CANCELLED y REFUNDED son terminales.
var statusTransitions = map[string][]string{
	entity.OrderStatusPending:    {entity.OrderStatusConfirmed, entity.OrderStatusCancelled},
	entity.OrderStatusConfirmed:  {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing: {entity.OrderStatusShipped, entity.OrderStatusCancelled},
	entity.OrderStatusShipped:    {entity.OrderStatusDelivered},
	entity.OrderStatusDelivered:  {entity.OrderStatusRefunded},
	entity.OrderStatusCancelled:  {},
	entity.OrderStatusRefunded:   {},
}

// paymentTransitions: transiciones legales del estado de pago. FAILED y REFUNDED son terminales.
var paymentTransitions = map[string][]string{
	entity.PaymentStatusPending:  {entity.PaymentStatusPaid, entity.PaymentStatusFailed},
	entity.PaymentStatusPaid:     {entity.PaymentStatusRefunded},
	entity.PaymentStatusFailed:   {},
	entity.PaymentStatusRefunded: {},
}

// IsValidStatus indica si s es un estado de pedido conocido.
func IsValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsValidPaymentStatus indica si s es un estado de pago conocido.
func IsValidPaymentStatus(s string) bool {
	_, ok := paymentTransitions[s]
	return ok
}

// IsTerminal indica si el estado del pedido no admite más transiciones.
func IsTerminal(status string) bool {
	return len(statusTransitions[status]) == 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransitionTo valida el cambio de estado del pedido. REFUNDED exige además pago PAID.
func CanTransitionTo(o *entity.Order, next string) bool {
	if !contains(statusTransitions[o.Status], next) {
		return false
	}
	if next == entity.OrderStatusRefunded && o.PaymentStatus != entity.PaymentStatusPaid {
		return false
	}
	return true
}

// CanTransitionPaymentTo valida el cambio de estado de pago. PAID -> REFUNDED exige pedido DELIVERED.
func CanTransitionPaymentTo(o *entity.Order, next string) bool {
	if !contains(paymentTransitions[o.PaymentStatus], next) {
		return false
	}
	if next == entity.PaymentStatusRefunded && o.Status != entity.OrderStatusDelivered {
		return false
	}
	return true
}

// TransitionTo aplica el cambio de estado o devuelve ErrInvalidStatusTransition dejando el pedido intacto.
func TransitionTo(o *entity.Order, next string) error {
	if !IsValidStatus(next) {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, next)
	}
	if !CanTransitionTo(o, next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, o.Status, next)
	}
	o.Status = next
	return nil
}

// TransitionPaymentTo aplica el cambio de estado de pago o devuelve ErrInvalidStatusTransition.
func TransitionPaymentTo(o *entity.Order, next string) error {
	if !IsValidPaymentStatus(next) {
		return fmt.Errorf("%w: estado de pago desconocido %q", domain.ErrInvalidInput, next)
	}
	if !CanTransitionPaymentTo(o, next) {
		return fmt.Errorf("%w: pago %s -> %s", domain.ErrInvalidStatusTransition, o.PaymentStatus, next)
	}
	o.PaymentStatus = next
	return nil
}

// ItemsInLockOrder devuelve una copia de los ítems ordenada por ProductID. Es el orden en que
// se bloquean las filas de inventario al mover stock de un pedido; dos pedidos con los mismos
// productos nunca se esperan en ciclo.
func ItemsInLockOrder(items []entity.OrderItem) []entity.OrderItem {
	out := make([]entity.OrderItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
