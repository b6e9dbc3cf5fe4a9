package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
)

// seedUser figura como autor de los movimientos iniciales.
const seedUser = "seed"

var catalogHeader = []string{"code", "name", "base_price", "min_stock", "max_stock", "warehouse", "quantity"}

type catalogRow struct {
	line      int
	code      string
	name      string
	basePrice decimal.Decimal
	minStock  int64
	maxStock  int64
	warehouse string
	quantity  int64
}

// parseCatalog lee el CSV con cabecera. Un producto puede repetirse en varias bodegas.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(catalogHeader)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	for i, h := range catalogHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), h) {
			return nil, fmt.Errorf("cabecera: columna %d debe ser %q, es %q", i+1, h, header[i])
		}
	}
	var rows []catalogRow
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := catalogRow{
			line:      line,
			code:      strings.TrimSpace(rec[0]),
			name:      strings.TrimSpace(rec[1]),
			warehouse: strings.TrimSpace(rec[5]),
		}
		if row.basePrice, err = decimal.NewFromString(strings.TrimSpace(rec[2])); err != nil {
			return nil, fmt.Errorf("línea %d: base_price: %w", line, err)
		}
		ints := []*int64{&row.minStock, &row.maxStock, &row.quantity}
		for i, col := range []int{3, 4, 6} {
			if *ints[i], err = strconv.ParseInt(strings.TrimSpace(rec[col]), 10, 64); err != nil {
				return nil, fmt.Errorf("línea %d: %s: %w", line, catalogHeader[col], err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type seedResult struct {
	products, warehouses, records, skipped int
}

// seeder aplica las filas con los casos de uso; lo que ya existe se reutiliza o se omite.
type seeder struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	productUC     *usecase.ProductUseCase
	warehouseUC   *usecase.WarehouseUseCase
	ledger        *inventory.LedgerUseCase
	log           *logger.Logger
}

func (s *seeder) run(ctx context.Context, rows []catalogRow) (seedResult, error) {
	var res seedResult
	warehouseIDs, err := s.existingWarehouses(ctx)
	if err != nil {
		return res, err
	}
	productIDs := map[string]string{}

	for _, row := range rows {
		pid, ok := productIDs[row.code]
		if !ok {
			pid, err = s.ensureProduct(ctx, row, &res)
			if err != nil {
				return res, fmt.Errorf("línea %d: %w", row.line, err)
			}
			productIDs[row.code] = pid
		}
		wid, ok := warehouseIDs[row.warehouse]
		if !ok {
			w, err := s.warehouseUC.Create(ctx, dto.CreateWarehouseRequest{Name: row.warehouse})
			if err != nil {
				return res, fmt.Errorf("línea %d: %w", row.line, err)
			}
			wid = w.ID
			warehouseIDs[row.warehouse] = wid
			res.warehouses++
		}
		_, err = s.ledger.CreateRecord(ctx, seedUser, dto.CreateRecordRequest{
			ProductID: pid, WarehouseID: wid, Quantity: row.quantity,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			s.log.Warn().Str("code", row.code).Str("warehouse", row.warehouse).Msg("inventario ya existente, se omite")
			res.skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("línea %d: %w", row.line, err)
		}
		res.records++
	}
	return res, nil
}

func (s *seeder) ensureProduct(ctx context.Context, row catalogRow, res *seedResult) (string, error) {
	existing, err := s.productRepo.GetByCode(ctx, row.code)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	p, err := s.productUC.Create(ctx, dto.CreateProductRequest{
		Code:      row.code,
		Name:      row.name,
		BasePrice: row.basePrice,
		MinStock:  row.minStock,
		MaxStock:  row.maxStock,
	})
	if err != nil {
		return "", err
	}
	res.products++
	return p.ID, nil
}

func (s *seeder) existingWarehouses(ctx context.Context) (map[string]string, error) {
	list, err := s.warehouseRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, w := range list {
		out[w.Name] = w.ID
	}
	return out, nil
}
