package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

const recordColumns = `id, product_id, warehouse_id, quantity, active, created_at, last_updated`

// InventoryRecordRepo registros de inventario sobre PostgreSQL (usable con pool o tx).
// Los métodos que bloquean solo tienen efecto dentro de una tx.
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := row.Scan(&rec.ID, &rec.ProductID, &rec.WarehouseID, &rec.Quantity, &rec.Active, &rec.CreatedAt, &rec.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *InventoryRecordRepo) one(ctx context.Context, op, query string, args ...any) (*entity.InventoryRecord, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// GetByID obtiene un registro (incluye los dados de baja). (nil, nil) si no existe.
func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.one(ctx, "get inventory record", `SELECT `+recordColumns+` FROM inventory_records WHERE id = $1`, id)
}

// GetByPair obtiene el registro del par producto/bodega. (nil, nil) si no existe.
func (r *InventoryRecordRepo) GetByPair(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error) {
	return r.one(ctx, "get inventory record by pair",
		`SELECT `+recordColumns+` FROM inventory_records WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID)
}

// GetByIDForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRecordRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.one(ctx, "get inventory record for update",
		`SELECT `+recordColumns+` FROM inventory_records WHERE id = $1 FOR UPDATE`, id)
}

// LockOrCreate inserta el candidato si el par no existe y luego bloquea la fila del par.
// ON CONFLICT DO NOTHING evita la carrera entre dos primeras entradas concurrentes.
func (r *InventoryRecordRepo) LockOrCreate(ctx context.Context, candidate *entity.InventoryRecord) (*entity.InventoryRecord, bool, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO inventory_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		candidate.ID, candidate.ProductID, candidate.WarehouseID, candidate.Quantity, candidate.Active,
		candidate.CreatedAt, candidate.LastUpdated,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert inventory record: %w", err)
	}
	rec, err := r.one(ctx, "lock inventory record",
		`SELECT `+recordColumns+` FROM inventory_records WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`,
		candidate.ProductID, candidate.WarehouseID)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, fmt.Errorf("%w: inventario %s/%s", domain.ErrNotFound, candidate.ProductID, candidate.WarehouseID)
	}
	return rec, cmd.RowsAffected() == 1, nil
}

// Update persiste cantidad, estado y fecha. El CHECK (quantity >= 0) respalda la regla del libro.
func (r *InventoryRecordRepo) Update(ctx context.Context, record *entity.InventoryRecord) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_records SET quantity = $2, active = $3, last_updated = $4 WHERE id = $1`,
		record.ID, record.Quantity, record.Active, record.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update inventory record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: inventario %s", domain.ErrNotFound, record.ID)
	}
	return nil
}

// List lista registros ordenados por producto y bodega.
func (r *InventoryRecordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records
		WHERE ($1 = '' OR product_id = $1)
		  AND ($2 = '' OR warehouse_id = $2)
		  AND ($3 OR active)
		ORDER BY product_id, warehouse_id`
	rows, err := r.q.Query(ctx, query, filter.ProductID, filter.WarehouseID, filter.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
