package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewStore()
	require.NoError(t, err)
	return s
}

func TestProductUseCase_Create(t *testing.T) {
	s := newStore(t)
	uc := usecase.NewProductUseCase(s.Products(), s.Records())
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-1", Name: "Teclado", BasePrice: decimal.RequireFromString("19.999"), MinStock: 2, MaxStock: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, entity.ProductStatusActive, p.Status)
	assert.True(t, p.BasePrice.Equal(decimal.RequireFromString("20")))

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-1", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-2", Name: "Mouse", MinStock: 10, MaxStock: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-3", Name: "Mouse", BasePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-4", Name: "Mouse", Status: "BORRADO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_UpdateYList(t *testing.T) {
	s := newStore(t)
	uc := usecase.NewProductUseCase(s.Products(), s.Records())
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-1", Name: "Teclado"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "SKU-2", Name: "Mouse"})
	require.NoError(t, err)

	status := entity.ProductStatusDiscontinued
	name := "Teclado mecánico"
	upd, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, name, upd.Name)
	assert.Equal(t, "SKU-1", upd.Code)

	discontinued, err := uc.List(ctx, entity.ProductStatusDiscontinued, 0, 0)
	require.NoError(t, err)
	require.Len(t, discontinued.Items, 1)
	assert.Equal(t, p.ID, discontinued.Items[0].ID)

	_, err = uc.List(ctx, "BORRADO", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_DeleteConInventarioVivo(t *testing.T) {
	s := newStore(t)
	products := usecase.NewProductUseCase(s.Products(), s.Records())
	warehouses := usecase.NewWarehouseUseCase(s.Warehouses(), s.Records())
	ledger := inventory.NewLedgerUseCase(s, s.Records(), s.Movements(), s.Products(), s.Warehouses(), nil, nil, nil)
	ctx := context.Background()

	p, err := products.Create(ctx, dto.CreateProductRequest{Code: "SKU-1", Name: "Teclado"})
	require.NoError(t, err)
	w, err := warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Central"})
	require.NoError(t, err)
	rec, err := ledger.CreateRecord(ctx, "user-1", dto.CreateRecordRequest{ProductID: p.ID, WarehouseID: w.ID, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, products.Delete(ctx, p.ID), domain.ErrConflict)
	assert.ErrorIs(t, warehouses.Delete(ctx, w.ID), domain.ErrConflict)

	// Dado de baja conserva historial: sigue sin poder borrarse.
	_, err = ledger.RemoveRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, products.Delete(ctx, p.ID), domain.ErrConflict)

	other, err := products.Create(ctx, dto.CreateProductRequest{Code: "SKU-2", Name: "Mouse"})
	require.NoError(t, err)
	require.NoError(t, products.Delete(ctx, other.ID))
	_, err = products.GetByID(ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, products.Delete(ctx, other.ID), domain.ErrNotFound)
}

func TestWarehouseUseCase_CRUD(t *testing.T) {
	s := newStore(t)
	uc := usecase.NewWarehouseUseCase(s.Warehouses(), s.Records())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateWarehouseRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	w, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Central", Location: "Bogotá"})
	require.NoError(t, err)

	loc := "Medellín"
	upd, err := uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Central", upd.Name)
	assert.Equal(t, loc, upd.Location)

	list, err := uc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
