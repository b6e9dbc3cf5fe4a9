// seed carga un catálogo inicial (productos, bodegas y existencias) desde un CSV
// en la base PostgreSQL configurada, pasando por los mismos casos de uso que la API.
//
// Uso: go run ./cmd/seed [ruta/catalog.csv]
// Por defecto busca catalog.csv en el directorio actual.
// Columnas: code,name,base_price,min_stock,max_stock,warehouse,quantity
package main

import (
	"context"
	"os"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-orders-api/pkg/config"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
)

func main() {
	csvPath := "catalog.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("seed")
	if cfg.Store.Driver != config.StoreDriverPostgres {
		log.Fatal().Str("store", cfg.Store.Driver).Msg("seed solo tiene sentido contra PostgreSQL")
	}

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := parseCatalog(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
	}

	products := postgres.NewProductRepository(pool)
	warehouses := postgres.NewWarehouseRepository(pool)
	records := postgres.NewInventoryRecordRepository(pool)
	movements := postgres.NewStockMovementRepository(pool)

	s := &seeder{
		productRepo:   products,
		warehouseRepo: warehouses,
		productUC:     usecase.NewProductUseCase(products, records),
		warehouseUC:   usecase.NewWarehouseUseCase(warehouses, records),
		ledger:        inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), records, movements, products, warehouses, nil, nil, log),
		log:           log,
	}
	res, err := s.run(ctx, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("seed interrumpido")
	}
	log.Info().
		Int("products", res.products).
		Int("warehouses", res.warehouses).
		Int("records", res.records).
		Int("skipped", res.skipped).
		Msg("seed terminado")
}
