package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/order"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// OrderHandler expone el ciclo de vida de pedidos.
type OrderHandler struct {
	uc *order.LifecycleUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.LifecycleUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Calcula subtotal, impuesto y total; el pedido nace PENDING/PENDING.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Pedido"
// @Success      201   {object}  dto.Envelope{data=dto.OrderResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, out)
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.Envelope{data=dto.OrderResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// GetByNumber obtiene un pedido por su número (ORD-…).
func (h *OrderHandler) GetByNumber(c *fiber.Ctx) error {
	out, err := h.uc.GetByNumber(c.UserContext(), c.Params("orderNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status          query  string  false  "Estado"
// @Param        customer_email  query  string  false  "Email del cliente"
// @Param        from            query  string  false  "Desde (RFC3339)"
// @Param        to              query  string  false  "Hasta (RFC3339)"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.Envelope{data=dto.OrderListResponse}
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	from, err := timeParam(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := timeParam(c, "to")
	if err != nil {
		return respondError(c, err)
	}
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), repository.OrderFilter{
		Status:        c.Query("status"),
		CustomerEmail: c.Query("customer_email"),
		From:          from,
		To:            to,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Update godoc
// @Summary      Actualizar pedido (recalcula precios)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "Cambios"
// @Success      200   {object}  dto.Envelope{data=dto.OrderResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// UpdateStatus godoc
// @Summary      Transición de estado del pedido
// @Description  fulfillment (al pasar a DELIVERED) y restock (al pasar a REFUNDED) mueven stock en la misma transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.Envelope{data=dto.OrderResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.TransitionStatus(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// UpdatePaymentStatus godoc
// @Summary      Transición de estado de pago
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdatePaymentStatusRequest  true  "Nuevo estado de pago"
// @Success      200   {object}  dto.Envelope{data=dto.OrderResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/orders/{id}/payment-status [patch]
func (h *OrderHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var in dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.TransitionPaymentStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Cancel cancela el pedido (atajo de status=CANCELLED).
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Delete elimina un pedido CANCELLED.
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

// Stats godoc
// @Summary      Estadísticas de pedidos (solo admin)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.OrderStatsResponse}
// @Router       /api/orders/stats [get]
func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}
