package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log de movimientos sobre PostgreSQL. Solo inserción; seq da el orden del log.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega el movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, inventory_id, product_id, warehouse_id, type, quantity, delta,
			quantity_before, quantity_after, reference, source, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.InventoryID, m.ProductID, m.WarehouseID, m.Type, m.Quantity, m.Delta,
		m.QuantityBefore, m.QuantityAfter, m.Reference, m.Source, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// List devuelve los movimientos filtrados, más recientes primero. Limit <= 0 no limita.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, inventory_id, product_id, warehouse_id, type, quantity, delta,
			quantity_before, quantity_after, reference, source, created_by, created_at
		FROM stock_movements
		WHERE ($1 = '' OR product_id = $1)
		  AND ($2 = '' OR warehouse_id = $2)
		  AND ($3 = '' OR type = $3)
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY seq DESC
		LIMIT NULLIF($6, 0) OFFSET $7`
	rows, err := r.q.Query(ctx, query,
		filter.ProductID, filter.WarehouseID, filter.Type, filter.From, filter.To, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.InventoryID, &m.ProductID, &m.WarehouseID, &m.Type, &m.Quantity, &m.Delta,
			&m.QuantityBefore, &m.QuantityAfter, &m.Reference, &m.Source, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Count devuelve el total de movimientos.
func (r *StockMovementRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}
