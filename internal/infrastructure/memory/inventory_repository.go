package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var (
	_ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)
	_ repository.StockMovementRepository   = (*StockMovementRepo)(nil)
)

// InventoryRecordRepo registros de inventario en memoria.
// Dentro de Store.Run la txn de escritura ya excluye a otros escritores, así que *ForUpdate es una lectura.
type InventoryRecordRepo struct {
	q querier
}

func newInventoryRecordRepository(q querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

func (r *InventoryRecordRepo) first(index string, args ...interface{}) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	err := r.q.read(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableRecords, index, args...)
		if err != nil || obj == nil {
			return err
		}
		cp := *obj.(*entity.InventoryRecord)
		out = &cp
		return nil
	})
	return out, err
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InventoryRecordRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	return r.first("id", id)
}

// GetByPair devuelve el registro del par (producto, bodega) o (nil, nil).
func (r *InventoryRecordRepo) GetByPair(_ context.Context, productID, warehouseID string) (*entity.InventoryRecord, error) {
	return r.first("pair", productID, warehouseID)
}

// GetByIDForUpdate igual que GetByID; el bloqueo lo da la txn de escritura.
func (r *InventoryRecordRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.GetByID(ctx, id)
}

// LockOrCreate devuelve el registro del par o inserta candidate.
func (r *InventoryRecordRepo) LockOrCreate(_ context.Context, candidate *entity.InventoryRecord) (*entity.InventoryRecord, bool, error) {
	var out *entity.InventoryRecord
	created := false
	err := r.q.write(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableRecords, "pair", candidate.ProductID, candidate.WarehouseID)
		if err != nil {
			return err
		}
		if obj != nil {
			cp := *obj.(*entity.InventoryRecord)
			out = &cp
			return nil
		}
		stored := *candidate
		if err := txn.Insert(tableRecords, &stored); err != nil {
			return err
		}
		cp := stored
		out, created = &cp, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// Update reemplaza el registro existente.
func (r *InventoryRecordRepo) Update(_ context.Context, record *entity.InventoryRecord) error {
	return r.q.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableRecords, "id", record.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: inventario %s", domain.ErrNotFound, record.ID)
		}
		cp := *record
		return txn.Insert(tableRecords, &cp)
	})
}

// List lista registros ordenados por producto y bodega.
func (r *InventoryRecordRepo) List(_ context.Context, filter repository.RecordFilter) ([]*entity.InventoryRecord, error) {
	index, args := "id", []interface{}{}
	switch {
	case filter.ProductID != "":
		index, args = "product", []interface{}{filter.ProductID}
	case filter.WarehouseID != "":
		index, args = "warehouse", []interface{}{filter.WarehouseID}
	}
	var out []*entity.InventoryRecord
	err := r.q.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableRecords, index, args...)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			rec := *obj.(*entity.InventoryRecord)
			if filter.WarehouseID != "" && rec.WarehouseID != filter.WarehouseID {
				continue
			}
			if !rec.Active && !filter.IncludeInactive {
				continue
			}
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

// movementRow guarda el movimiento con su secuencia de inserción (orden estable del log).
type movementRow struct {
	ID  string
	Seq uint64
	M   entity.StockMovement
}

// StockMovementRepo log de movimientos en memoria (solo inserción).
type StockMovementRepo struct {
	q querier
}

func newStockMovementRepository(q querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega el movimiento al log.
func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.q.write(func(txn *memdb.Txn) error {
		return txn.Insert(tableMovements, &movementRow{ID: movement.ID, Seq: r.q.next(), M: *movement})
	})
}

// List devuelve los movimientos filtrados, más recientes primero.
func (r *StockMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	var rows []*movementRow
	err := r.q.read(func(txn *memdb.Txn) error {
		return all(txn, tableMovements, func(obj interface{}) {
			row := obj.(*movementRow)
			m := row.M
			switch {
			case filter.ProductID != "" && m.ProductID != filter.ProductID,
				filter.WarehouseID != "" && m.WarehouseID != filter.WarehouseID,
				filter.Type != "" && m.Type != filter.Type,
				filter.From != nil && m.CreatedAt.Before(*filter.From),
				filter.To != nil && m.CreatedAt.After(*filter.To):
				return
			}
			rows = append(rows, row)
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq > rows[j].Seq })
	rows = page(rows, filter.Limit, filter.Offset)
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		m := row.M
		out = append(out, &m)
	}
	return out, nil
}

// Count devuelve el total de movimientos.
func (r *StockMovementRepo) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.q.read(func(txn *memdb.Txn) error {
		return all(txn, tableMovements, func(interface{}) { n++ })
	})
	return n, err
}
