package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/ports"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	domainorder "github.com/jhoicas/stock-orders-api/internal/domain/order"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
	"github.com/jhoicas/stock-orders-api/pkg/metrics"
)

// SourceOrder es el origen de los movimientos que generan los pedidos.
const SourceOrder = "order"

// Deps agrupa los colaboradores opcionales del ciclo de vida.
type Deps struct {
	Cache     ports.OrderCache
	Publisher ports.EventPublisher
	Metrics   *metrics.Recorder
	Logger    *logger.Logger
	TaxRate   *decimal.Decimal // nil = tasa por defecto
}

// LifecycleUseCase gestiona pedidos: creación con precios, máquinas de estado y pago,
// y las intenciones de stock en la entrega y el reembolso.
type LifecycleUseCase struct {
	txRunner      TxRunner
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	ledger        StockLedger
	cache         ports.OrderCache
	publisher     ports.EventPublisher
	metrics       *metrics.Recorder
	log           *logger.Logger
	taxRate       decimal.Decimal
	epoch         cacheEpoch
}

// NewLifecycleUseCase construye el caso de uso. Los campos vacíos de deps toman valores neutros.
func NewLifecycleUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	ledger StockLedger,
	deps Deps,
) *LifecycleUseCase {
	if deps.Cache == nil {
		deps.Cache = ports.NoopOrderCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = ports.NoopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	taxRate := domainorder.DefaultTaxRate
	if deps.TaxRate != nil {
		taxRate = *deps.TaxRate
	}
	return &LifecycleUseCase{
		txRunner:      txRunner,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		ledger:        ledger,
		cache:         deps.Cache,
		publisher:     deps.Publisher,
		metrics:       deps.Metrics,
		log:           deps.Logger.Named("orders"),
		taxRate:       taxRate,
	}
}

// Create crea el pedido en PENDING/PENDING con los totales calculados por ComputeTotals.
// El número de pedido se reintenta ante colisión y, agotados los intentos, es ErrConflict.
func (uc *LifecycleUseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	items, err := uc.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	o := &entity.Order{
		ID:              uuid.New().String(),
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Notes:           in.Notes,
		ShippingCost:    in.ShippingCost,
		DiscountAmount:  in.DiscountAmount,
		Status:          entity.OrderStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range o.Items {
		o.Items[i].ID = uuid.New().String()
		o.Items[i].OrderID = o.ID
	}
	domainorder.Reprice(o, uc.taxRate)

	created := false
	for attempt := 0; attempt < domainorder.MaxNumberAttempts && !created; attempt++ {
		o.OrderNumber = domainorder.GenerateOrderNumber(now)
		err = uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, _ repository.InventoryRecordRepository, _ repository.StockMovementRepository) error {
			return orderRepo.Create(ctx, o)
		})
		switch {
		case err == nil:
			created = true
		case errors.Is(err, domain.ErrDuplicate):
			uc.log.Warn().Str("order_number", o.OrderNumber).Int("attempt", attempt+1).Msg("número de pedido repetido, reintentando")
		default:
			return nil, err
		}
	}
	if !created {
		return nil, fmt.Errorf("%w: no se pudo asignar un número de pedido único", domain.ErrConflict)
	}

	uc.metrics.OrderCreated()
	uc.log.Debug().Str("order_id", o.ID).Str("order_number", o.OrderNumber).Str("grand_total", o.GrandTotal.String()).Msg("pedido creado")
	resp := toOrderResponse(o)
	uc.publish(ctx, ports.EventOrderCreated, o.ID, resp)
	return resp, nil
}

// Update modifica los campos de cabecera de un pedido no terminal y recalcula los totales.
// Los ítems no cambian.
func (uc *LifecycleUseCase) Update(ctx context.Context, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var updated *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, _ repository.InventoryRecordRepository, _ repository.StockMovementRepository) error {
		o, err := lockOrder(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if domainorder.IsTerminal(o.Status) {
			return fmt.Errorf("%w: el pedido está en estado terminal %s", domain.ErrInvalidStatusTransition, o.Status)
		}
		applyUpdate(o, in)
		domainorder.Reprice(o, uc.taxRate)
		o.UpdatedAt = time.Now()
		if err := orderRepo.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)
	resp := toOrderResponse(updated)
	uc.publish(ctx, ports.EventOrderUpdated, id, resp)
	return resp, nil
}

// TransitionStatus aplica un cambio de estado según la tabla de transiciones.
// Con fulfillment (solo hacia DELIVERED) descuenta stock por ítem; con restock (solo hacia REFUNDED)
// lo reingresa como RETURN. Todo en la misma transacción que el cambio de estado.
func (uc *LifecycleUseCase) TransitionStatus(ctx context.Context, userID, id string, in dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	intent, err := uc.stockIntent(ctx, in)
	if err != nil {
		return nil, err
	}

	var updated *entity.Order
	var from string
	var movs []*entity.StockMovement
	err = uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, recordRepo repository.InventoryRecordRepository, movRepo repository.StockMovementRepository) error {
		o, err := lockOrder(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := domainorder.TransitionTo(o, in.Status); err != nil {
			return err
		}
		if intent != nil {
			for _, it := range domainorder.ItemsInLockOrder(o.Items) {
				_, mov, err := uc.ledger.ApplyInTx(ctx, recordRepo, movRepo, inventory.MovementInput{
					ProductID:   it.ProductID,
					WarehouseID: intent.warehouseID,
					Type:        intent.movementType,
					Delta:       intent.sign * it.Quantity,
					Reference:   o.OrderNumber,
					Source:      SourceOrder,
					CreatedBy:   userID,
				})
				if err != nil {
					return fmt.Errorf("producto %s: %w", it.ProductCode, err)
				}
				movs = append(movs, mov)
			}
		}
		o.UpdatedAt = time.Now()
		if err := orderRepo.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(movs) > 0 {
		uc.ledger.Committed(ctx, movs...)
	}
	uc.metrics.Transition("status", in.Status)
	uc.log.Debug().Str("order_id", id).Str("from", from).Str("to", in.Status).Int("movements", len(movs)).Msg("estado de pedido actualizado")
	uc.invalidate(ctx, id)
	uc.publish(ctx, ports.EventOrderStatusChanged, id, statusChange{
		OrderID:     id,
		OrderNumber: updated.OrderNumber,
		From:        from,
		To:          in.Status,
	})
	return toOrderResponse(updated), nil
}

// Cancel es TransitionStatus hacia CANCELLED. No revierte movimientos ya registrados.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, userID, id string) (*dto.OrderResponse, error) {
	return uc.TransitionStatus(ctx, userID, id, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
}

// TransitionPaymentStatus aplica un cambio de estado de pago según su tabla.
func (uc *LifecycleUseCase) TransitionPaymentStatus(ctx context.Context, id string, in dto.UpdatePaymentStatusRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var updated *entity.Order
	var from string
	err := uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, _ repository.InventoryRecordRepository, _ repository.StockMovementRepository) error {
		o, err := lockOrder(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		from = o.PaymentStatus
		if err := domainorder.TransitionPaymentTo(o, in.PaymentStatus); err != nil {
			return err
		}
		o.UpdatedAt = time.Now()
		if err := orderRepo.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.Transition("payment", in.PaymentStatus)
	uc.invalidate(ctx, id)
	uc.publish(ctx, ports.EventOrderPaymentChanged, id, statusChange{
		OrderID:     id,
		OrderNumber: updated.OrderNumber,
		From:        from,
		To:          in.PaymentStatus,
	})
	return toOrderResponse(updated), nil
}

// Delete elimina un pedido. Solo se pueden eliminar pedidos CANCELLED.
func (uc *LifecycleUseCase) Delete(ctx context.Context, id string) error {
	var number string
	err := uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, _ repository.InventoryRecordRepository, _ repository.StockMovementRepository) error {
		o, err := lockOrder(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderStatusCancelled {
			return fmt.Errorf("%w: solo se eliminan pedidos CANCELLED (actual %s)", domain.ErrInvalidStatusTransition, o.Status)
		}
		number = o.OrderNumber
		return orderRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, ports.EventOrderDeleted, id, map[string]string{"order_id": id, "order_number": number})
	return nil
}

type statusChange struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	From        string `json:"from"`
	To          string `json:"to"`
}

type stockIntent struct {
	warehouseID  string
	movementType string
	sign         int64
}

// stockIntent valida la intención de stock de la petición contra el estado destino.
func (uc *LifecycleUseCase) stockIntent(ctx context.Context, in dto.UpdateOrderStatusRequest) (*stockIntent, error) {
	if in.Fulfillment != nil && in.Restock != nil {
		return nil, fmt.Errorf("%w: fulfillment y restock son excluyentes", domain.ErrInvalidInput)
	}
	var intent *stockIntent
	switch {
	case in.Fulfillment != nil:
		if in.Status != entity.OrderStatusDelivered {
			return nil, fmt.Errorf("%w: fulfillment solo aplica al pasar a DELIVERED", domain.ErrInvalidInput)
		}
		mt := in.Fulfillment.MovementType
		if mt == "" {
			mt = entity.MovementTypeSALE
		}
		intent = &stockIntent{warehouseID: in.Fulfillment.WarehouseID, movementType: mt, sign: -1}
	case in.Restock != nil:
		if in.Status != entity.OrderStatusRefunded {
			return nil, fmt.Errorf("%w: restock solo aplica al pasar a REFUNDED", domain.ErrInvalidInput)
		}
		intent = &stockIntent{warehouseID: in.Restock.WarehouseID, movementType: entity.MovementTypeRETURN, sign: 1}
	default:
		return nil, nil
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, intent.warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, intent.warehouseID)
	}
	return intent, nil
}

// buildItems toma la foto de cada producto (código, nombre, precio). El producto debe estar ACTIVE.
func (uc *LifecycleUseCase) buildItems(ctx context.Context, reqs []dto.OrderItemRequest) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		p, err := uc.productRepo.GetByID(ctx, r.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, r.ProductID)
		}
		if p.Status != entity.ProductStatusActive {
			return nil, fmt.Errorf("%w: el producto %s no está disponible (%s)", domain.ErrInvalidInput, p.Code, p.Status)
		}
		price := p.BasePrice
		if r.UnitPrice != nil {
			price = *r.UnitPrice
		}
		items = append(items, entity.OrderItem{
			ProductID:       p.ID,
			ProductCode:     p.Code,
			ProductName:     p.Name,
			UnitPrice:       price,
			Quantity:        r.Quantity,
			DiscountPercent: r.DiscountPercent,
		})
	}
	return items, nil
}

func applyUpdate(o *entity.Order, in dto.UpdateOrderRequest) {
	if in.CustomerName != nil {
		o.CustomerName = *in.CustomerName
	}
	if in.CustomerEmail != nil {
		o.CustomerEmail = *in.CustomerEmail
	}
	if in.CustomerPhone != nil {
		o.CustomerPhone = *in.CustomerPhone
	}
	if in.ShippingAddress != nil {
		o.ShippingAddress = *in.ShippingAddress
	}
	if in.BillingAddress != nil {
		o.BillingAddress = *in.BillingAddress
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}
	if in.ShippingCost != nil {
		o.ShippingCost = *in.ShippingCost
	}
	if in.DiscountAmount != nil {
		o.DiscountAmount = *in.DiscountAmount
	}
}

func lockOrder(ctx context.Context, orderRepo repository.OrderRepository, id string) (*entity.Order, error) {
	o, err := orderRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
	}
	return o, nil
}

// invalidate borra la entrada de caché; un fallo solo se registra.
func (uc *LifecycleUseCase) invalidate(ctx context.Context, id string) {
	uc.epoch.bump()
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.metrics.SideEffectFailed("cache")
		uc.log.Error().Err(err).Str("order_id", id).Msg("no se pudo invalidar la caché del pedido")
	}
}

// publish envía el evento tras el commit; un fallo solo se registra.
func (uc *LifecycleUseCase) publish(ctx context.Context, eventType, orderID string, payload interface{}) {
	ev := ports.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Key:        orderID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.metrics.SideEffectFailed("event")
		uc.log.Error().Err(err).Str("event_type", eventType).Str("order_id", orderID).Msg("no se pudo publicar el evento")
	}
}
