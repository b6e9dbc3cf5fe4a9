package http

import (
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/order"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/pkg/jwt"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
	"github.com/jhoicas/stock-orders-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	Ledger      *inventory.LedgerUseCase
	Orders      *order.LifecycleUseCase
	JWTSecret   string
}

// AppConfig opciones de la aplicación Fiber.
type AppConfig struct {
	Name        string
	SwaggerFile string // vacío = sin /docs
	Logger      *logger.Logger
	Metrics     *metrics.Recorder
	Gatherer    prometheus.Gatherer // nil = sin /metrics
}

// NewApp crea la aplicación Fiber con el manejador de errores, los middlewares comunes,
// /health, /metrics y /docs. Las rutas de la API se registran aparte con Router.
func NewApp(cfg AppConfig) *fiber.App {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(requestid.New())
	app.Use(RequestLogger(log))
	app.Use(Metrics(cfg.Metrics))
	app.Use(recover.New())

	if cfg.SwaggerFile != "" {
		// Swagger UI: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    cfg.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
// Las rutas fijas (/alerts, /stats, /movements...) van antes de /:id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv.Get("/", inventoryHandler.List)
	inv.Post("/", inventoryHandler.Create)
	inv.Get("/alerts", adminOnly, inventoryHandler.Alerts)
	inv.Get("/stats", adminOnly, inventoryHandler.Stats)
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Post("/movements", inventoryHandler.RecordMovement)
	inv.Get("/:id", inventoryHandler.GetByID)
	inv.Put("/:id", inventoryHandler.Update)
	inv.Delete("/:id", inventoryHandler.Delete)
	inv.Patch("/:id/adjust", inventoryHandler.Adjust)

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/stats", adminOnly, orderHandler.Stats)
	orders.Get("/number/:orderNumber", orderHandler.GetByNumber)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Patch("/:id/payment-status", orderHandler.UpdatePaymentStatus)
	orders.Post("/:id/cancel", orderHandler.Cancel)
}
