package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// Las lecturas van sobre una foto consistente sin bloquear escritores.

// GetRecord obtiene un registro vivo con los datos del catálogo.
func (uc *LedgerUseCase) GetRecord(ctx context.Context, id string) (*dto.InventoryRecordResponse, error) {
	rec, err := uc.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.Active {
		return nil, fmt.Errorf("%w: inventario %s", domain.ErrNotFound, id)
	}
	return uc.recordResponse(ctx, rec)
}

// ListRecords lista los registros vivos, opcionalmente por bodega o producto.
func (uc *LedgerUseCase) ListRecords(ctx context.Context, warehouseID, productID string) ([]dto.InventoryRecordResponse, error) {
	views, err := uc.views(ctx, repository.RecordFilter{WarehouseID: warehouseID, ProductID: productID})
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryRecordResponse, 0, len(views))
	for _, v := range views {
		out = append(out, *toRecordResponse(v))
	}
	return out, nil
}

// ListMovements lista movimientos, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Type != "" && !inventory.IsValidMovementType(filter.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, filter.Type)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListAlerts deriva las alertas de stock; limit <= 0 devuelve todas.
func (uc *LedgerUseCase) ListAlerts(ctx context.Context, limit int) ([]dto.StockAlertResponse, error) {
	views, err := uc.views(ctx, repository.RecordFilter{})
	if err != nil {
		return nil, err
	}
	alerts := inventory.DeriveAlerts(views, limit)
	out := make([]dto.StockAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.StockAlertResponse{
			InventoryID:     a.InventoryID,
			ProductID:       a.ProductID,
			ProductCode:     a.ProductCode,
			ProductName:     a.ProductName,
			WarehouseID:     a.WarehouseID,
			WarehouseName:   a.WarehouseName,
			CurrentQuantity: a.CurrentQuantity,
			MinThreshold:    a.MinThreshold,
			AlertType:       a.AlertType,
			Severity:        a.Severity,
			Message:         a.Message,
		})
	}
	return out, nil
}

// ComputeStats calcula las estadísticas agregadas del inventario.
func (uc *LedgerUseCase) ComputeStats(ctx context.Context) (*dto.InventoryStatsResponse, error) {
	views, err := uc.views(ctx, repository.RecordFilter{})
	if err != nil {
		return nil, err
	}
	total, err := uc.movRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	st := inventory.ComputeStats(views, total)
	return &dto.InventoryStatsResponse{
		TotalProducts:      st.TotalProducts,
		TotalQuantity:      st.TotalQuantity,
		LowStockProducts:   st.LowStockProducts,
		OutOfStockProducts: st.OutOfStockProducts,
		OverstockProducts:  st.OverstockProducts,
		TotalMovements:     st.TotalMovements,
	}, nil
}

// views une registros vivos con productos y bodegas (una consulta por colección).
func (uc *LedgerUseCase) views(ctx context.Context, filter repository.RecordFilter) ([]inventory.RecordView, error) {
	records, err := uc.recordRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	warehouses, err := uc.warehouseRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byProduct[p.ID] = p
	}
	whNames := make(map[string]string, len(warehouses))
	for _, w := range warehouses {
		whNames[w.ID] = w.Name
	}
	views := make([]inventory.RecordView, 0, len(records))
	for _, r := range records {
		v := inventory.RecordView{Record: *r, WarehouseName: whNames[r.WarehouseID]}
		if p := byProduct[r.ProductID]; p != nil {
			v.Product = *p
		} else {
			v.Product = entity.Product{ID: r.ProductID}
		}
		views = append(views, v)
	}
	return views, nil
}

func (uc *LedgerUseCase) recordResponse(ctx context.Context, rec *entity.InventoryRecord) (*dto.InventoryRecordResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, rec.ProductID)
	if err != nil {
		return nil, err
	}
	warehouse, err := uc.warehouseRepo.GetByID(ctx, rec.WarehouseID)
	if err != nil {
		return nil, err
	}
	return toRecordResponse(viewOf(rec, product, warehouse)), nil
}

func viewOf(rec *entity.InventoryRecord, product *entity.Product, warehouse *entity.Warehouse) inventory.RecordView {
	v := inventory.RecordView{Record: *rec}
	if product != nil {
		v.Product = *product
	} else {
		v.Product = entity.Product{ID: rec.ProductID}
	}
	if warehouse != nil {
		v.WarehouseName = warehouse.Name
	}
	return v
}

func toRecordResponse(v inventory.RecordView) *dto.InventoryRecordResponse {
	return &dto.InventoryRecordResponse{
		ID:            v.Record.ID,
		ProductID:     v.Record.ProductID,
		ProductCode:   v.Product.Code,
		ProductName:   v.Product.Name,
		WarehouseID:   v.Record.WarehouseID,
		WarehouseName: v.WarehouseName,
		Quantity:      v.Record.Quantity,
		MinStock:      v.Product.MinStock,
		MaxStock:      v.Product.MaxStock,
		StockStatus:   v.StockStatus(),
		Active:        v.Record.Active,
		LastUpdated:   v.Record.LastUpdated,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		InventoryID:    m.InventoryID,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		Delta:          m.Delta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reference:      m.Reference,
		Source:         m.Source,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}
