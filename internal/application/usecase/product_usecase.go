package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía el libro de movimientos.
type ProductUseCase struct {
	repo       repository.ProductRepository
	recordRepo repository.InventoryRecordRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, recordRepo repository.InventoryRecordRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, recordRepo: recordRepo}
}

// Create crea un nuevo producto. El código es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := checkThresholds(in.MinStock, in.MaxStock); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: código %s", domain.ErrDuplicate, in.Code)
	}
	if in.Status == "" {
		in.Status = entity.ProductStatusActive
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		BasePrice:   in.BasePrice.Round(2),
		Status:      in.Status,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. El código es inmutable.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.BasePrice != nil {
		product.BasePrice = in.BasePrice.Round(2)
	}
	if in.Status != nil {
		product.Status = *in.Status
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		product.MaxStock = *in.MaxStock
	}
	if err := checkThresholds(product.MinStock, product.MaxStock); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación, opcionalmente por estado.
func (uc *ProductUseCase) List(ctx context.Context, status string, limit, offset int) (*dto.ProductListResponse, error) {
	if status != "" && !entity.IsValidProductStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	list, err := uc.repo.List(ctx, repository.ProductFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto. Rechaza con ErrConflict si tiene inventario vivo.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	live, err := uc.recordRepo.List(ctx, repository.RecordFilter{ProductID: id})
	if err != nil {
		return err
	}
	if len(live) > 0 {
		return fmt.Errorf("%w: el producto tiene %d registros de inventario activos", domain.ErrConflict, len(live))
	}
	return uc.repo.Delete(ctx, id)
}

// checkThresholds: max_stock = 0 es "sin tope" y no se compara con el mínimo.
func checkThresholds(min, max int64) error {
	if max > 0 && max < min {
		return fmt.Errorf("%w: max_stock debe ser mayor o igual que min_stock", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		Status:      p.Status,
		MinStock:    p.MinStock,
		MaxStock:    p.MaxStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
