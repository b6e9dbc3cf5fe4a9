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
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	q querier
}

// newProductRepository construye el repositorio.
func newProductRepository(q querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create inserta el producto; el código repetido es ErrDuplicate.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.q.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableProducts, "code", product.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		cp := *product
		return txn.Insert(tableProducts, &cp)
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.first("id", id)
}

// GetByCode devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	return r.first("code", code)
}

func (r *ProductRepo) first(index, value string) (*entity.Product, error) {
	var out *entity.Product
	err := r.q.read(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableProducts, index, value)
		if err != nil || obj == nil {
			return err
		}
		cp := *obj.(*entity.Product)
		out = &cp
		return nil
	})
	return out, err
}

// List lista productos ordenados por código.
func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.q.read(func(txn *memdb.Txn) error {
		return all(txn, tableProducts, func(obj interface{}) {
			p := *obj.(*entity.Product)
			if filter.Status != "" && p.Status != filter.Status {
				return
			}
			out = append(out, &p)
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, filter.Limit, filter.Offset), nil
}

// Update reemplaza el producto existente.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.q.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableProducts, "id", product.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, product.ID)
		}
		cp := *product
		cp.Code = existing.(*entity.Product).Code
		return txn.Insert(tableProducts, &cp)
	})
}

// Delete elimina el producto. Con registros de inventario (aunque estén de baja) es ErrConflict.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.q.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableProducts, "id", id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if err := referenced(txn, "product", id); err != nil {
			return err
		}
		return txn.Delete(tableProducts, existing)
	})
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	q querier
}

// newWarehouseRepository construye el repositorio.
func newWarehouseRepository(q querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create inserta la bodega.
func (r *WarehouseRepo) Create(_ context.Context, warehouse *entity.Warehouse) error {
	return r.q.write(func(txn *memdb.Txn) error {
		cp := *warehouse
		return txn.Insert(tableWarehouses, &cp)
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.q.read(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableWarehouses, "id", id)
		if err != nil || obj == nil {
			return err
		}
		cp := *obj.(*entity.Warehouse)
		out = &cp
		return nil
	})
	return out, err
}

// List lista bodegas ordenadas por nombre.
func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.q.read(func(txn *memdb.Txn) error {
		return all(txn, tableWarehouses, func(obj interface{}) {
			w := *obj.(*entity.Warehouse)
			out = append(out, &w)
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

// Update reemplaza la bodega existente.
func (r *WarehouseRepo) Update(_ context.Context, warehouse *entity.Warehouse) error {
	return r.q.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableWarehouses, "id", warehouse.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouse.ID)
		}
		cp := *warehouse
		return txn.Insert(tableWarehouses, &cp)
	})
}

// Delete elimina la bodega. Con registros de inventario (aunque estén de baja) es ErrConflict.
func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	return r.q.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableWarehouses, "id", id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
		if err := referenced(txn, "warehouse", id); err != nil {
			return err
		}
		return txn.Delete(tableWarehouses, existing)
	})
}

// referenced equivale a la FK de inventory_records: el historial del libro no queda huérfano.
func referenced(txn *memdb.Txn, index, id string) error {
	obj, err := txn.First(tableRecords, index, id)
	if err != nil {
		return err
	}
	if obj != nil {
		return fmt.Errorf("%w: existen registros de inventario asociados", domain.ErrConflict)
	}
	return nil
}
