package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// InventoryHandler expone el libro de stock: registros, movimientos, transferencias, alertas y estadísticas.
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// List godoc
// @Summary      Listar registros de inventario activos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        product_id    query  string  false  "Producto"
// @Success      200  {object}  dto.Envelope{data=[]dto.InventoryRecordResponse}
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.ledger.ListRecords(c.UserContext(), c.Query("warehouse_id"), c.Query("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Create godoc
// @Summary      Crear (o reactivar) registro de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecordRequest  true  "Producto, bodega y cantidad inicial"
// @Success      201   {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.CreateRecord(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, out)
}

// GetByID obtiene un registro activo.
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.ledger.GetRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Update godoc
// @Summary      Fijar cantidad absoluta (genera un ADJUSTMENT)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  dto.UpdateRecordRequest  true  "Cantidad"
// @Success      200   {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.UpdateRecord(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Delete godoc
// @Summary      Dar de baja registro
// @Description  Baja lógica: devuelve el registro con active=false y conserva su historial.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del registro"
// @Success      200  {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	out, err := h.ledger.RemoveRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Adjust godoc
// @Summary      Ajuste con signo sobre un registro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  dto.AdjustQuantityRequest  true  "Delta"
// @Success      200   {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/inventory/{id}/adjust [patch]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.AdjustQuantity(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.RecordMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, out)
}

// ListMovements godoc
// @Summary      Historial de movimientos (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        type          query  string  false  "Tipo de movimiento"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.Envelope{data=dto.MovementListResponse}
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, err := timeParam(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := timeParam(c, "to")
	if err != nil {
		return respondError(c, err)
	}
	limit, offset := pageParams(c)
	out, err := h.ledger.ListMovements(c.UserContext(), repository.MovementFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Type:        c.Query("type"),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Transfer godoc
// @Summary      Transferir stock entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Transferencia"
// @Success      201   {object}  dto.Envelope{data=dto.TransferResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.Transfer(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, out)
}

// Alerts godoc
// @Summary      Alertas de stock (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de alertas (0 = todas)"
// @Success      200  {object}  dto.Envelope{data=[]dto.StockAlertResponse}
// @Failure      403  {object}  dto.Envelope
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.ledger.ListAlerts(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}

// Stats godoc
// @Summary      Estadísticas de inventario (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.InventoryStatsResponse}
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	out, err := h.ledger.ComputeStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, out)
}
