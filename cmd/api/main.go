package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/order"
	"github.com/jhoicas/stock-orders-api/internal/application/ports"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-orders-api/internal/interfaces/http"
	"github.com/jhoicas/stock-orders-api/pkg/config"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
	"github.com/jhoicas/stock-orders-api/pkg/metrics"
)

// txRunner es lo que exigen el libro y el ciclo de vida de pedidos.
type txRunner interface {
	inventory.TxRunner
	order.TxRunner
}

// storage agrupa los repositorios del driver elegido.
type storage struct {
	tx         txRunner
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	records    repository.InventoryRecordRepository
	movements  repository.StockMovementRepository
	orders     repository.OrderRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	var cache ports.OrderCache
	if cfg.Redis.Enabled() {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		cache = redis.NewOrderCache(client, cfg.Redis.OrderTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de pedidos en Redis")
	}

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = kafka.NewPublisher(cfg.Kafka)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos en Kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador de eventos")
		}
	}()

	ledger := inventory.NewLedgerUseCase(
		store.tx, store.records, store.movements, store.products, store.warehouses,
		publisher, rec, log,
	)
	taxRate := cfg.Orders.TaxRate
	orders := order.NewLifecycleUseCase(store.tx, store.orders, store.products, store.warehouses, ledger, order.Deps{
		Cache:     cache,
		Publisher: publisher,
		Metrics:   rec,
		Logger:    log,
		TaxRate:   &taxRate,
	})

	swaggerFile := cfg.HTTP.SwaggerFile
	if swaggerFile != "" {
		if _, err := os.Stat(swaggerFile); err != nil {
			log.Warn().Str("file", swaggerFile).Msg("swagger no disponible, /docs deshabilitado")
			swaggerFile = ""
		}
	}

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		SwaggerFile: swaggerFile,
		Logger:      log.Named("http"),
		Metrics:     rec,
		Gatherer:    reg,
	})
	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(store.products, store.records),
		WarehouseUC: usecase.NewWarehouseUseCase(store.warehouses, store.records),
		Ledger:      ledger,
		Orders:      orders,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (aplicando el esquema si DB_MIGRATE) o el almacén en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		s, err := memory.NewStore()
		if err != nil {
			return nil, err
		}
		log.Warn().Msg("almacenamiento en memoria: los datos no sobreviven al reinicio")
		return &storage{
			tx:         s,
			products:   s.Products(),
			warehouses: s.Warehouses(),
			records:    s.Records(),
			movements:  s.Movements(),
			orders:     s.Orders(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		tx:         postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		records:    postgres.NewInventoryRecordRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		orders:     postgres.NewOrderRepository(pool),
		close:      pool.Close,
	}, nil
}
