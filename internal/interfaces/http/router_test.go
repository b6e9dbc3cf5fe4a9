package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/order"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-orders-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-orders-api/pkg/jwt"
	"github.com/jhoicas/stock-orders-api/pkg/metrics"
)

// envelope es el sobre de respuesta con data sin decodificar.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type apiClient struct {
	t        *testing.T
	app      *fiber.App
	admin    string
	operator string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	s, err := memory.NewStore()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	ledger := inventory.NewLedgerUseCase(s, s.Records(), s.Movements(), s.Products(), s.Warehouses(), nil, rec, nil)
	orders := order.NewLifecycleUseCase(s, s.Orders(), s.Products(), s.Warehouses(), ledger, order.Deps{Metrics: rec})

	app := apphttp.NewApp(apphttp.AppConfig{Name: "stock-orders-test", Metrics: rec, Gatherer: reg})
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(s.Products(), s.Records()),
		WarehouseUC: usecase.NewWarehouseUseCase(s.Warehouses(), s.Records()),
		Ledger:      ledger,
		Orders:      orders,
		JWTSecret:   testJWTSecret,
	})
	return &apiClient{
		t:        t,
		app:      app,
		admin:    tokenForRole(t, pkgjwt.RoleAdmin),
		operator: tokenForRole(t, pkgjwt.RoleOperator),
	}
}

// do lanza la petición y decodifica el sobre; out (opcional) recibe data.
func (a *apiClient) do(method, path, token string, body interface{}, out interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode, env
}

// seed crea un producto y una bodega y devuelve sus IDs.
func (a *apiClient) seed() (string, string) {
	a.t.Helper()
	var p dto.ProductResponse
	status, env := a.do(http.MethodPost, "/api/products", a.operator, map[string]interface{}{
		"code": "SKU-1", "name": "Teclado", "base_price": 100, "min_stock": 5, "max_stock": 50,
	}, &p)
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	require.True(a.t, env.Success)

	var w dto.WarehouseResponse
	status, env = a.do(http.MethodPost, "/api/warehouses", a.operator, map[string]interface{}{
		"name": "Central", "location": "Bogotá",
	}, &w)
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return p.ID, w.ID
}

func TestAPI_Health_SinToken(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_RutaInexistente_NotFound(t *testing.T) {
	api := newAPI(t)
	status, env := api.do(http.MethodGet, "/no-existe", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestAPI_SinToken_401(t *testing.T) {
	api := newAPI(t)
	status, env := api.do(http.MethodGet, "/api/products", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", env.Code)
}

func TestAPI_Productos(t *testing.T) {
	api := newAPI(t)
	productID, _ := api.seed()

	var p dto.ProductResponse
	status, env := api.do(http.MethodGet, "/api/products/"+productID, api.operator, nil, &p)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "SKU-1", p.Code)
	assert.True(t, p.BasePrice.Equal(decimal.NewFromInt(100)))

	status, env = api.do(http.MethodPost, "/api/products", api.operator, map[string]interface{}{
		"code": "SKU-1", "name": "Otro", "base_price": 1,
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", env.Code)

	status, env = api.do(http.MethodPost, "/api/products", api.operator, `{"code":`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", env.Code)

	status, env = api.do(http.MethodPost, "/api/products", api.operator, map[string]interface{}{
		"code": "SKU-2", "name": "Mouse", "base_price": -1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Code)

	status, env = api.do(http.MethodGet, "/api/products/no-existe", api.operator, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	var list dto.ProductListResponse
	status, _ = api.do(http.MethodGet, "/api/products?limit=500", api.operator, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 100, list.Page.Limit)
}

func TestAPI_LibroDeStock(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()

	var rec dto.InventoryRecordResponse
	status, env := api.do(http.MethodPost, "/api/inventory/movements", api.operator, map[string]interface{}{
		"product_id": productID, "warehouse_id": warehouseID, "type": "PURCHASE", "quantity": 10,
	}, &rec)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.EqualValues(t, 10, rec.Quantity)

	status, env = api.do(http.MethodPatch, "/api/inventory/"+rec.ID+"/adjust", api.operator, map[string]interface{}{
		"adjustment": -15,
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	var adjusted dto.InventoryRecordResponse
	status, _ = api.do(http.MethodPatch, "/api/inventory/"+rec.ID+"/adjust", api.operator, map[string]interface{}{
		"adjustment": -4,
	}, &adjusted)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 6, adjusted.Quantity)

	var movs dto.MovementListResponse
	status, _ = api.do(http.MethodGet, "/api/inventory/movements?product_id="+productID, api.operator, nil, &movs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, movs.Items, 2)
	assert.Equal(t, "ADJUSTMENT", movs.Items[0].Type)
	assert.Equal(t, "PURCHASE", movs.Items[1].Type)

	status, env = api.do(http.MethodGet, "/api/inventory/movements?from=ayer", api.operator, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Code)

	var removed dto.InventoryRecordResponse
	status, env = api.do(http.MethodDelete, "/api/inventory/"+rec.ID, api.operator, nil, &removed)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, rec.ID, removed.ID)
	assert.False(t, removed.Active)
	assert.EqualValues(t, 6, removed.Quantity)

	status, _ = api.do(http.MethodGet, "/api/inventory/"+rec.ID, api.operator, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// El producto con historial no se puede borrar.
	status, env = api.do(http.MethodDelete, "/api/products/"+productID, api.operator, nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestAPI_EstadisticasSoloAdmin(t *testing.T) {
	api := newAPI(t)
	api.seed()

	for _, path := range []string{"/api/inventory/stats", "/api/inventory/alerts", "/api/orders/stats"} {
		status, env := api.do(http.MethodGet, path, api.operator, nil, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		assert.Equal(t, "FORBIDDEN", env.Code, path)

		status, env = api.do(http.MethodGet, path, api.admin, nil, nil)
		assert.Equal(t, http.StatusOK, status, path)
		assert.True(t, env.Success, path)
	}
}

func TestAPI_Pedidos(t *testing.T) {
	api := newAPI(t)
	productID, _ := api.seed()

	var o dto.OrderResponse
	status, env := api.do(http.MethodPost, "/api/orders", api.operator, map[string]interface{}{
		"customer_name":    "Ana Pérez",
		"customer_email":   "ana@example.com",
		"shipping_address": "Calle 1 # 2-3",
		"shipping_cost":    20,
		"discount_amount":  5,
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 2, "discount_percent": 10},
		},
	}, &o)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "PENDING", o.Status)
	assert.True(t, o.GrandTotal.Equal(decimal.NewFromInt(234)), o.GrandTotal.String())

	var byNumber dto.OrderResponse
	status, _ = api.do(http.MethodGet, "/api/orders/number/"+o.OrderNumber, api.operator, nil, &byNumber)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, o.ID, byNumber.ID)

	status, env = api.do(http.MethodPatch, "/api/orders/"+o.ID+"/status", api.operator, map[string]interface{}{
		"status": "DELIVERED",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Code)

	status, env = api.do(http.MethodDelete, "/api/orders/"+o.ID, api.operator, nil, nil)
	assert.Equal(t, http.StatusConflict, status, env.Message)

	var cancelled dto.OrderResponse
	status, _ = api.do(http.MethodPost, "/api/orders/"+o.ID+"/cancel", api.operator, nil, &cancelled)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	status, _ = api.do(http.MethodPost, "/api/orders/"+o.ID+"/cancel", api.operator, nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = api.do(http.MethodDelete, "/api/orders/"+o.ID, api.operator, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = api.do(http.MethodGet, "/api/orders/"+o.ID, api.operator, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_Metrics(t *testing.T) {
	api := newAPI(t)
	api.do(http.MethodGet, "/api/products", api.operator, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stock_orders_http_requests_total")
}
