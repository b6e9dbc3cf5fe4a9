package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/ports"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
	"github.com/jhoicas/stock-orders-api/pkg/metrics"
)

// Referencias y orígenes que el libro asigna por su cuenta.
const (
	ReferenceInitial = "INITIAL"
	SourceManual     = "manual"
	SourceTransfer   = "transfer"
)

// MovementInput es un cambio de cantidad ya clasificado: Delta lleva el signo.
type MovementInput struct {
	ProductID   string
	WarehouseID string
	Type        string
	Delta       int64
	Reference   string
	Source      string
	CreatedBy   string
}

// LedgerUseCase es el libro de stock: único escritor de InventoryRecord.Quantity.
// Cada escritura bloquea el registro (SELECT FOR UPDATE o txn serializada) y confirma
// movimiento y cantidad en la misma transacción.
type LedgerUseCase struct {
	txRunner      TxRunner
	recordRepo    repository.InventoryRecordRepository
	movRepo       repository.StockMovementRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	publisher     ports.EventPublisher
	metrics       *metrics.Recorder
	log           *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. publisher, rec y log pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	recordRepo repository.InventoryRecordRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	publisher ports.EventPublisher,
	rec *metrics.Recorder,
	log *logger.Logger,
) *LedgerUseCase {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:      txRunner,
		recordRepo:    recordRepo,
		movRepo:       movRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		publisher:     publisher,
		metrics:       rec,
		log:           log.Named("ledger"),
	}
}

// RecordMovement aplica un movimiento al registro (producto, bodega), creándolo en 0 si no existe.
// Para ADJUSTMENT, in.Quantity es el delta con signo; para el resto la magnitud (> 0).
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, userID string, in dto.RecordMovementRequest) (*dto.InventoryRecordResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	delta := in.Quantity
	if in.Type != entity.MovementTypeADJUSTMENT {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
		}
		delta = inventory.SignedDelta(in.Type, in.Quantity)
	}
	product, warehouse, err := uc.catalog(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}

	var rec *entity.InventoryRecord
	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, movRepo repository.StockMovementRepository) error {
		var err error
		rec, mov, err = uc.ApplyInTx(ctx, recordRepo, movRepo, MovementInput{
			ProductID:   in.ProductID,
			WarehouseID: in.WarehouseID,
			Type:        in.Type,
			Delta:       delta,
			Reference:   in.Reference,
			Source:      in.Source,
			CreatedBy:   userID,
		})
		return err
	})
	if err != nil {
		return nil, uc.rejected(err)
	}
	uc.Committed(ctx, mov)
	return toRecordResponse(viewOf(rec, product, warehouse)), nil
}

// AdjustQuantity aplica un delta con signo al registro indicado como movimiento ADJUSTMENT.
func (uc *LedgerUseCase) AdjustQuantity(ctx context.Context, userID, recordID string, in dto.AdjustQuantityRequest) (*dto.InventoryRecordResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, movRepo repository.StockMovementRepository) error {
		locked, err := lockLive(ctx, recordRepo, recordID)
		if err != nil {
			return err
		}
		rec, mov, err = uc.applyToRecord(ctx, recordRepo, movRepo, locked, MovementInput{
			ProductID:   locked.ProductID,
			WarehouseID: locked.WarehouseID,
			Type:        entity.MovementTypeADJUSTMENT,
			Delta:       in.Adjustment,
			Reference:   in.Reference,
			Source:      SourceManual,
			CreatedBy:   userID,
		}, time.Now())
		return err
	})
	if err != nil {
		return nil, uc.rejected(err)
	}
	uc.Committed(ctx, mov)
	return uc.recordResponse(ctx, rec)
}

// CreateRecord da de alta el registro del par con una cantidad inicial (registrada como IN INITIAL).
// Un registro vivo para el par es ErrDuplicate; uno dado de baja se reactiva y se lleva a la cantidad pedida.
func (uc *LedgerUseCase) CreateRecord(ctx context.Context, userID string, in dto.CreateRecordRequest) (*dto.InventoryRecordResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	product, warehouse, err := uc.catalog(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var rec *entity.InventoryRecord
	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, movRepo repository.StockMovementRepository) error {
		locked, created, err := recordRepo.LockOrCreate(ctx, newRecord(in.ProductID, in.WarehouseID, now))
		if err != nil {
			return err
		}
		if !created && locked.Active {
			return fmt.Errorf("%w: ya existe inventario para el producto en la bodega", domain.ErrDuplicate)
		}
		movementType := entity.MovementTypeIN
		if !created {
			locked.Active = true
			movementType = entity.MovementTypeADJUSTMENT
		}
		delta := in.Quantity - locked.Quantity
		if delta == 0 {
			locked.LastUpdated = now
			rec = locked
			return recordRepo.Update(ctx, locked)
		}
		rec, mov, err = uc.applyToRecord(ctx, recordRepo, movRepo, locked, MovementInput{
			ProductID:   in.ProductID,
			WarehouseID: in.WarehouseID,
			Type:        movementType,
			Delta:       delta,
			Reference:   ReferenceInitial,
			Source:      SourceManual,
			CreatedBy:   userID,
		}, now)
		return err
	})
	if err != nil {
		return nil, uc.rejected(err)
	}
	uc.Committed(ctx, mov)
	return toRecordResponse(viewOf(rec, product, warehouse)), nil
}

// UpdateRecord fija una cantidad absoluta registrando un ADJUSTMENT por la diferencia.
func (uc *LedgerUseCase) UpdateRecord(ctx context.Context, userID, recordID string, in dto.UpdateRecordRequest) (*dto.InventoryRecordResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, movRepo repository.StockMovementRepository) error {
		locked, err := lockLive(ctx, recordRepo, recordID)
		if err != nil {
			return err
		}
		delta := in.Quantity - locked.Quantity
		if delta == 0 {
			rec = locked
			return nil
		}
		rec, mov, err = uc.applyToRecord(ctx, recordRepo, movRepo, locked, MovementInput{
			ProductID:   locked.ProductID,
			WarehouseID: locked.WarehouseID,
			Type:        entity.MovementTypeADJUSTMENT,
			Delta:       delta,
			Source:      SourceManual,
			CreatedBy:   userID,
		}, time.Now())
		return err
	})
	if err != nil {
		return nil, uc.rejected(err)
	}
	uc.Committed(ctx, mov)
	return uc.recordResponse(ctx, rec)
}

// RemoveRecord da de baja lógica el registro y lo devuelve con active=false.
// Los movimientos lo siguen referenciando.
func (uc *LedgerUseCase) RemoveRecord(ctx context.Context, recordID string) (*dto.InventoryRecordResponse, error) {
	var removed *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, _ repository.StockMovementRepository) error {
		locked, err := lockLive(ctx, recordRepo, recordID)
		if err != nil {
			return err
		}
		locked.Active = false
		locked.LastUpdated = time.Now()
		if err := recordRepo.Update(ctx, locked); err != nil {
			return err
		}
		removed = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.recordResponse(ctx, removed)
}

// Transfer mueve stock entre bodegas: TRANSFER_OUT en origen y TRANSFER_IN en destino, misma transacción
// y misma referencia. Los registros se bloquean en orden de bodega para no cruzar bloqueos.
func (uc *LedgerUseCase) Transfer(ctx context.Context, userID string, in dto.TransferRequest) (*dto.TransferResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	product, from, err := uc.catalog(ctx, in.ProductID, in.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	to, err := uc.warehouseRepo.GetByID(ctx, in.ToWarehouseID)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.ToWarehouseID)
	}
	reference := in.Reference
	if reference == "" {
		reference = "TRF-" + uuid.New().String()[:8]
	}

	now := time.Now()
	var origin, dest *entity.InventoryRecord
	var movs []*entity.StockMovement
	err = uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, movRepo repository.StockMovementRepository) error {
		first, second := in.FromWarehouseID, in.ToWarehouseID
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*entity.InventoryRecord, 2)
		for _, wh := range []string{first, second} {
			rec, _, err := recordRepo.LockOrCreate(ctx, newRecord(in.ProductID, wh, now))
			if err != nil {
				return err
			}
			locked[wh] = rec
		}
		outRec, outMov, err := uc.applyToRecord(ctx, recordRepo, movRepo, locked[in.FromWarehouseID], MovementInput{
			ProductID:   in.ProductID,
			WarehouseID: in.FromWarehouseID,
			Type:        entity.MovementTypeTRANSFEROUT,
			Delta:       -in.Quantity,
			Reference:   reference,
			Source:      SourceTransfer,
			CreatedBy:   userID,
		}, now)
		if err != nil {
			return err
		}
		inRec, inMov, err := uc.applyToRecord(ctx, recordRepo, movRepo, locked[in.ToWarehouseID], MovementInput{
			ProductID:   in.ProductID,
			WarehouseID: in.ToWarehouseID,
			Type:        entity.MovementTypeTRANSFERIN,
			Delta:       in.Quantity,
			Reference:   reference,
			Source:      SourceTransfer,
			CreatedBy:   userID,
		}, now)
		if err != nil {
			return err
		}
		origin, dest = outRec, inRec
		movs = []*entity.StockMovement{outMov, inMov}
		return nil
	})
	if err != nil {
		return nil, uc.rejected(err)
	}
	uc.Committed(ctx, movs...)
	return &dto.TransferResponse{
		From: *toRecordResponse(viewOf(origin, product, from)),
		To:   *toRecordResponse(viewOf(dest, product, to)),
	}, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de la transacción del llamador
// (p. ej. la entrega de un pedido). El llamador debe invocar Committed tras el commit.
func (uc *LedgerUseCase) ApplyInTx(
	ctx context.Context,
	recordRepo repository.InventoryRecordRepository,
	movRepo repository.StockMovementRepository,
	in MovementInput,
) (*entity.InventoryRecord, *entity.StockMovement, error) {
	if !inventory.IsValidMovementType(in.Type) {
		return nil, nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Delta == 0 {
		return nil, nil, fmt.Errorf("%w: el movimiento no cambia la cantidad", domain.ErrInvalidInput)
	}
	now := time.Now()
	rec, _, err := recordRepo.LockOrCreate(ctx, newRecord(in.ProductID, in.WarehouseID, now))
	if err != nil {
		return nil, nil, err
	}
	return uc.applyToRecord(ctx, recordRepo, movRepo, rec, in, now)
}

// applyToRecord aplica el delta a un registro ya bloqueado y agrega el movimiento.
// Si la cantidad quedaría negativa devuelve ErrInsufficientStock sin tocar nada.
func (uc *LedgerUseCase) applyToRecord(
	ctx context.Context,
	recordRepo repository.InventoryRecordRepository,
	movRepo repository.StockMovementRepository,
	rec *entity.InventoryRecord,
	in MovementInput,
	now time.Time,
) (*entity.InventoryRecord, *entity.StockMovement, error) {
	before := rec.Quantity
	next, ok := inventory.Apply(before, in.Delta)
	if !ok {
		return nil, nil, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, before, inventory.Abs(in.Delta))
	}
	updated := *rec
	updated.Quantity = next
	updated.Active = true
	updated.LastUpdated = now
	if err := recordRepo.Update(ctx, &updated); err != nil {
		return nil, nil, err
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		InventoryID:    rec.ID,
		ProductID:      rec.ProductID,
		WarehouseID:    rec.WarehouseID,
		Type:           in.Type,
		Quantity:       inventory.Abs(in.Delta),
		Delta:          in.Delta,
		QuantityBefore: before,
		QuantityAfter:  next,
		Reference:      in.Reference,
		Source:         in.Source,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, nil, err
	}
	return &updated, mov, nil
}

// Committed publica y contabiliza movimientos ya confirmados. Los fallos solo se registran.
func (uc *LedgerUseCase) Committed(ctx context.Context, movs ...*entity.StockMovement) {
	events := make([]ports.Event, 0, len(movs))
	for _, m := range movs {
		if m == nil {
			continue
		}
		uc.metrics.MovementRecorded(m.Type)
		uc.log.Debug().
			Str("movement_id", m.ID).
			Str("product_id", m.ProductID).
			Str("warehouse_id", m.WarehouseID).
			Str("type", m.Type).
			Int64("delta", m.Delta).
			Int64("quantity_after", m.QuantityAfter).
			Msg("movimiento registrado")
		events = append(events, ports.Event{
			ID:         uuid.New().String(),
			Type:       ports.EventMovementRecorded,
			Key:        m.ProductID + ":" + m.WarehouseID,
			OccurredAt: m.CreatedAt,
			Payload:    toMovementResponse(m),
		})
	}
	if len(events) == 0 {
		return
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.metrics.SideEffectFailed("event")
		uc.log.Error().Err(err).Int("events", len(events)).Msg("no se pudieron publicar los movimientos")
	}
}

func (uc *LedgerUseCase) rejected(err error) error {
	if errors.Is(err, domain.ErrInsufficientStock) {
		uc.metrics.StockRejected()
	}
	return err
}

// catalog valida que producto y bodega existan.
func (uc *LedgerUseCase) catalog(ctx context.Context, productID, warehouseID string) (*entity.Product, *entity.Warehouse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	warehouse, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, nil, err
	}
	if warehouse == nil {
		return nil, nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return product, warehouse, nil
}

// lockLive bloquea un registro por ID; los dados de baja cuentan como inexistentes.
func lockLive(ctx context.Context, recordRepo repository.InventoryRecordRepository, id string) (*entity.InventoryRecord, error) {
	rec, err := recordRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.Active {
		return nil, fmt.Errorf("%w: inventario %s", domain.ErrNotFound, id)
	}
	return rec, nil
}

func newRecord(productID, warehouseID string, now time.Time) *entity.InventoryRecord {
	return &entity.InventoryRecord{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Active:      true,
		CreatedAt:   now,
		LastUpdated: now,
	}
}
