package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// orderRow guarda el pedido (copia profunda) con su secuencia de inserción.
type orderRow struct {
	ID     string
	Number string
	Seq    uint64
	O      *entity.Order
}

// OrderRepo pedidos en memoria.
type OrderRepo struct {
	q querier
}

func newOrderRepository(q querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta el pedido; número o ID repetido es ErrDuplicate.
func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.q.write(func(txn *memdb.Txn) error {
		byNumber, err := txn.First(tableOrders, "number", o.OrderNumber)
		if err != nil {
			return err
		}
		byID, err := txn.First(tableOrders, "id", o.ID)
		if err != nil {
			return err
		}
		if byNumber != nil || byID != nil {
			return domain.ErrDuplicate
		}
		return txn.Insert(tableOrders, &orderRow{ID: o.ID, Number: o.OrderNumber, Seq: r.q.next(), O: o.Clone()})
	})
}

func (r *OrderRepo) first(index, value string) (*entity.Order, error) {
	var out *entity.Order
	err := r.q.read(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableOrders, index, value)
		if err != nil || obj == nil {
			return err
		}
		out = obj.(*orderRow).O.Clone()
		return nil
	})
	return out, err
}

// GetByID devuelve (nil, nil) si no existe.
func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return r.first("id", id)
}

// GetByIDForUpdate igual que GetByID; el bloqueo lo da la txn de escritura.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

// GetByNumber devuelve (nil, nil) si no existe.
func (r *OrderRepo) GetByNumber(_ context.Context, orderNumber string) (*entity.Order, error) {
	return r.first("number", orderNumber)
}

// List devuelve los pedidos filtrados, más recientes primero.
func (r *OrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	var rows []*orderRow
	err := r.q.read(func(txn *memdb.Txn) error {
		return all(txn, tableOrders, func(obj interface{}) {
			row := obj.(*orderRow)
			o := row.O
			switch {
			case filter.Status != "" && o.Status != filter.Status,
				filter.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, filter.CustomerEmail),
				filter.From != nil && o.CreatedAt.Before(*filter.From),
				filter.To != nil && o.CreatedAt.After(*filter.To):
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
	out := make([]*entity.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.O.Clone())
	}
	return out, nil
}

// Update reemplaza cabecera, estados y totales. Los ítems guardados no cambian.
func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.q.write(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableOrders, "id", o.ID)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, o.ID)
		}
		prev := obj.(*orderRow)
		next := o.Clone()
		next.OrderNumber = prev.Number
		next.Items = append([]entity.OrderItem(nil), prev.O.Items...)
		return txn.Insert(tableOrders, &orderRow{ID: prev.ID, Number: prev.Number, Seq: prev.Seq, O: next})
	})
}

// Delete elimina el pedido.
func (r *OrderRepo) Delete(_ context.Context, id string) error {
	return r.q.write(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableOrders, "id", id)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
		}
		return txn.Delete(tableOrders, obj)
	})
}
