// Package memory implementa los puertos de persistencia sobre go-memdb.
// Las escrituras usan una txn de escritura (un solo escritor a la vez, lo que equivale a bloquear
// las filas tocadas); las lecturas usan fotos MVCC sin bloquear.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/order"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

const (
	tableProducts   = "products"
	tableWarehouses = "warehouses"
	tableRecords    = "inventory_records"
	tableMovements  = "stock_movements"
	tableOrders     = "orders"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ order.TxRunner     = (*Store)(nil)
)

func schema() *memdb.DBSchema {
	id := &memdb.IndexSchema{Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}}
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProducts: {
				Name: tableProducts,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   id,
					"code": {Name: "code", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Code"}},
				},
			},
			tableWarehouses: {
				Name:    tableWarehouses,
				Indexes: map[string]*memdb.IndexSchema{"id": id},
			},
			tableRecords: {
				Name: tableRecords,
				Indexes: map[string]*memdb.IndexSchema{
					"id": id,
					"pair": {
						Name:   "pair",
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "ProductID"},
							&memdb.StringFieldIndex{Field: "WarehouseID"},
						}},
					},
					"product":   {Name: "product", Indexer: &memdb.StringFieldIndex{Field: "ProductID"}},
					"warehouse": {Name: "warehouse", Indexer: &memdb.StringFieldIndex{Field: "WarehouseID"}},
				},
			},
			tableMovements: {
				Name:    tableMovements,
				Indexes: map[string]*memdb.IndexSchema{"id": id},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					"id":     id,
					"number": {Name: "number", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Number"}},
				},
			},
		},
	}
}

// Store es la base en memoria. Implementa inventory.TxRunner y order.TxRunner.
type Store struct {
	db  *memdb.MemDB
	seq *atomic.Uint64
}

// NewStore crea una base vacía.
func NewStore() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("crear memdb: %w", err)
	}
	return &Store{db: db, seq: new(atomic.Uint64)}, nil
}

func (s *Store) querier() querier {
	return querier{db: s.db, seq: s.seq}
}

// Products devuelve el repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return newProductRepository(s.querier()) }

// Warehouses devuelve el repositorio de bodegas fuera de transacción.
func (s *Store) Warehouses() *WarehouseRepo { return newWarehouseRepository(s.querier()) }

// Records devuelve el repositorio de registros de inventario fuera de transacción.
func (s *Store) Records() *InventoryRecordRepo { return newInventoryRecordRepository(s.querier()) }

// Movements devuelve el repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return newStockMovementRepository(s.querier()) }

// Orders devuelve el repositorio de pedidos fuera de transacción.
func (s *Store) Orders() *OrderRepo { return newOrderRepository(s.querier()) }

// Run ejecuta fn en una txn de escritura con los repositorios de stock; Commit si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(
	recordRepo repository.InventoryRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.inTxn(ctx, func(q querier) error {
		return fn(newInventoryRecordRepository(q), newStockMovementRepository(q))
	})
}

// RunOrder ejecuta fn en una txn de escritura con los repositorios de pedidos y de stock.
func (s *Store) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	recordRepo repository.InventoryRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.inTxn(ctx, func(q querier) error {
		return fn(newOrderRepository(q), newInventoryRecordRepository(q), newStockMovementRepository(q))
	})
}

func (s *Store) inTxn(ctx context.Context, fn func(q querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := fn(querier{db: s.db, txn: txn, seq: s.seq}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// querier usa la txn en curso si la hay; si no, abre una propia por operación.
type querier struct {
	db  *memdb.MemDB
	txn *memdb.Txn
	seq *atomic.Uint64
}

func (q querier) read(fn func(txn *memdb.Txn) error) error {
	if q.txn != nil {
		return fn(q.txn)
	}
	txn := q.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

func (q querier) write(fn func(txn *memdb.Txn) error) error {
	if q.txn != nil {
		return fn(q.txn)
	}
	txn := q.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (q querier) next() uint64 {
	return q.seq.Add(1)
}

// all recorre la tabla por el índice id.
func all(txn *memdb.Txn, table string, fn func(obj interface{})) error {
	it, err := txn.Get(table, "id")
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		fn(obj)
	}
	return nil
}

// page aplica offset y limit (limit <= 0 no limita).
func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
