package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/order"
	"github.com/jhoicas/stock-orders-api/internal/application/ports"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-orders-api/pkg/metrics"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeCache caché en memoria que cuenta las invalidaciones.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]*entity.Order
	invalidated []string
	failSet     bool
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]*entity.Order{}} }

func (c *fakeCache) Get(_ context.Context, id string) (*entity.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.entries[id]; ok {
		return o.Clone(), nil
	}
	return nil, nil
}

func (c *fakeCache) Set(_ context.Context, o *entity.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache caída")
	}
	c.entries[o.ID] = o.Clone()
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

// fakePublisher guarda los tipos de evento; con fail devuelve error.
type fakePublisher struct {
	mu    sync.Mutex
	types []string
	fail  bool
}

func (p *fakePublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker caído")
	}
	for _, e := range events {
		p.types = append(p.types, e.Type)
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// slowOrderRepo ejecuta afterLoad una vez, entre la lectura del repositorio y la respuesta.
type slowOrderRepo struct {
	repository.OrderRepository
	afterLoad func()
}

func (r *slowOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := r.OrderRepository.GetByID(ctx, id)
	if fn := r.afterLoad; fn != nil {
		r.afterLoad = nil
		fn()
	}
	return o, err
}

type fixture struct {
	store  *memory.Store
	orders *order.LifecycleUseCase
	ledger *inventory.LedgerUseCase
	cache  *fakeCache
	pub    *fakePublisher
	rec    *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := memory.NewStore()
	require.NoError(t, err)
	rec := metrics.New(prometheus.NewRegistry())
	cache := newFakeCache()
	pub := &fakePublisher{}
	ledger := inventory.NewLedgerUseCase(s, s.Records(), s.Movements(), s.Products(), s.Warehouses(), nil, rec, nil)
	orders := order.NewLifecycleUseCase(s, s.Orders(), s.Products(), s.Warehouses(), ledger, order.Deps{
		Cache:     cache,
		Publisher: pub,
		Metrics:   rec,
	})
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "P1", Code: "SKU-1", Name: "Teclado", BasePrice: dec("100"), Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "P2", Code: "SKU-2", Name: "Mouse", BasePrice: dec("25"), Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "P3", Code: "SKU-3", Name: "Monitor", BasePrice: dec("300"), Status: entity.ProductStatusDiscontinued,
	}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "W1", Name: "Central"}))
	return &fixture{store: s, orders: orders, ledger: ledger, cache: cache, pub: pub, rec: rec}
}

func baseRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerName:    "Ana Pérez",
		CustomerEmail:   "ana@example.com",
		ShippingAddress: "Calle 1 # 2-3",
		ShippingCost:    dec("20"),
		DiscountAmount:  dec("5"),
		Items:           []dto.OrderItemRequest{{ProductID: "P1", Quantity: 2, DiscountPercent: dec("10")}},
	}
}

func (f *fixture) create(t *testing.T) *dto.OrderResponse {
	t.Helper()
	o, err := f.orders.Create(context.Background(), baseRequest())
	require.NoError(t, err)
	return o
}

func (f *fixture) transition(t *testing.T, id string, statuses ...string) {
	t.Helper()
	for _, s := range statuses {
		_, err := f.orders.TransitionStatus(context.Background(), "user-1", id, dto.UpdateOrderStatusRequest{Status: s})
		require.NoError(t, err, "hacia %s", s)
	}
}

func (f *fixture) stock(t *testing.T, productID string, qty int64) {
	t.Helper()
	_, err := f.ledger.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
		ProductID: productID, WarehouseID: "W1", Type: entity.MovementTypePURCHASE, Quantity: qty,
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, productID string) int64 {
	t.Helper()
	rec, err := f.store.Records().GetByPair(context.Background(), productID, "W1")
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.Quantity
}

func TestCreate_CalculaTotales(t *testing.T) {
	f := newFixture(t)

	o := f.create(t)

	assert.Regexp(t, `^ORD-\d{8}-\d{6}$`, o.OrderNumber)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, entity.PaymentStatusPending, o.PaymentStatus)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "SKU-1", o.Items[0].ProductCode)
	assert.True(t, o.Items[0].UnitPrice.Equal(dec("100")))
	assert.True(t, o.Subtotal.Equal(dec("180")), "subtotal = %s", o.Subtotal)
	assert.True(t, o.TaxAmount.Equal(dec("39")), "tax = %s", o.TaxAmount)
	assert.True(t, o.GrandTotal.Equal(dec("234")), "grandTotal = %s", o.GrandTotal)
	assert.Equal(t, []string{ports.EventOrderCreated}, f.pub.types)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rec.OrdersCreatedTotal))
}

func TestCreate_TasaConfigurable(t *testing.T) {
	s, err := memory.NewStore()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "P1", Code: "SKU-1", Name: "Teclado", BasePrice: dec("100"), Status: entity.ProductStatusActive}))
	zero := decimal.Zero
	uc := order.NewLifecycleUseCase(s, s.Orders(), s.Products(), s.Warehouses(), nil, order.Deps{TaxRate: &zero})

	o, err := uc.Create(ctx, baseRequest())
	require.NoError(t, err)
	assert.True(t, o.TaxAmount.IsZero())
	assert.True(t, o.GrandTotal.Equal(dec("195")), "grandTotal = %s", o.GrandTotal)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(*dto.CreateOrderRequest)
		err    error
	}{
		"sin ítems":            {func(r *dto.CreateOrderRequest) { r.Items = nil }, domain.ErrInvalidInput},
		"email inválido":       {func(r *dto.CreateOrderRequest) { r.CustomerEmail = "ana" }, domain.ErrInvalidInput},
		"cantidad cero":        {func(r *dto.CreateOrderRequest) { r.Items[0].Quantity = 0 }, domain.ErrInvalidInput},
		"descuento > 100":      {func(r *dto.CreateOrderRequest) { r.Items[0].DiscountPercent = dec("101") }, domain.ErrInvalidInput},
		"envío negativo":       {func(r *dto.CreateOrderRequest) { r.ShippingCost = dec("-1") }, domain.ErrInvalidInput},
		"producto inexistente": {func(r *dto.CreateOrderRequest) { r.Items[0].ProductID = "P9" }, domain.ErrNotFound},
		"producto no activo":   {func(r *dto.CreateOrderRequest) { r.Items[0].ProductID = "P3" }, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := baseRequest()
			tc.mutate(&req)
			_, err := f.orders.Create(ctx, req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCreate_PrecioExplicito(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	price := dec("80")
	req.Items = append(req.Items, dto.OrderItemRequest{ProductID: "P2", Quantity: 3, UnitPrice: &price})

	o, err := f.orders.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[1].TotalPrice.Equal(dec("240")))
	assert.True(t, o.Subtotal.Equal(dec("420")))
}

func TestUpdate_RecalculaYNoTocaItems(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ship := dec("0")
	notes := "dejar en portería"

	upd, err := f.orders.Update(context.Background(), o.ID, dto.UpdateOrderRequest{ShippingCost: &ship, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, upd.Notes)
	assert.True(t, upd.Subtotal.Equal(dec("180")))
	assert.True(t, upd.GrandTotal.Equal(dec("210")), "grandTotal = %s", upd.GrandTotal)
	assert.Equal(t, o.Items[0].ID, upd.Items[0].ID)
	assert.Contains(t, f.cache.invalidated, o.ID)

	f.transition(t, o.ID, entity.OrderStatusCancelled)
	_, err = f.orders.Update(context.Background(), o.ID, dto.UpdateOrderRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestTransitionStatus_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()

	f.transition(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusProcessing, entity.OrderStatusShipped, entity.OrderStatusDelivered)

	_, err := f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusRefunded})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "REFUNDED exige pago PAID")

	_, err = f.orders.TransitionPaymentStatus(ctx, o.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusPaid})
	require.NoError(t, err)
	f.transition(t, o.ID, entity.OrderStatusRefunded)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRefunded, got.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rec.TransitionsTotal.WithLabelValues("status", entity.OrderStatusRefunded)))
}

func TestTransitionStatus_Rechazos(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()

	_, err := f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusShipped})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	_, err = f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.TransitionStatus(ctx, "user-1", "nope", dto.UpdateOrderStatusRequest{Status: entity.OrderStatusConfirmed})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.Cancel(ctx, "user-1", o.ID)
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, "user-1", o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestCancel_ConcurrenteUnSoloGanador(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.Cancel(ctx, "user-1", o.ID)
		}(i)
	}
	wg.Wait()

	wins, invalid := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInvalidStatusTransition):
			invalid++
		default:
			t.Errorf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, invalid)

	got, err := f.store.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, got.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rec.TransitionsTotal.WithLabelValues("status", entity.OrderStatusCancelled)))
}

func TestTransitionStatus_FulfillmentDescuentaStock(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()
	f.stock(t, "P1", 5)
	f.transition(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusProcessing, entity.OrderStatusShipped)

	got, err := f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:      entity.OrderStatusDelivered,
		Fulfillment: &dto.FulfillmentIntent{WarehouseID: "W1"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, got.Status)
	assert.Equal(t, int64(3), f.quantity(t, "P1"))

	movs, err := f.store.Movements().List(ctx, repository.MovementFilter{Type: entity.MovementTypeSALE})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(-2), movs[0].Delta)
	assert.Equal(t, o.OrderNumber, movs[0].Reference)
	assert.Equal(t, order.SourceOrder, movs[0].Source)
}

func TestTransitionStatus_FulfillmentSinStockAbortaTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := baseRequest()
	req.Items = append(req.Items, dto.OrderItemRequest{ProductID: "P2", Quantity: 4})
	o, err := f.orders.Create(ctx, req)
	require.NoError(t, err)
	f.stock(t, "P1", 10)
	f.stock(t, "P2", 1)
	f.transition(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusProcessing, entity.OrderStatusShipped)

	_, err = f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:      entity.OrderStatusDelivered,
		Fulfillment: &dto.FulfillmentIntent{WarehouseID: "W1", MovementType: entity.MovementTypeOUT},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(10), f.quantity(t, "P1"), "el primer ítem no debe quedar descontado")
	assert.Equal(t, int64(1), f.quantity(t, "P2"))
	got, err := f.store.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, got.Status)
}

func TestTransitionStatus_FulfillmentEnOrdenDeBloqueo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := baseRequest()
	req.Items = []dto.OrderItemRequest{{ProductID: "P2", Quantity: 3}, {ProductID: "P1", Quantity: 1}}
	o, err := f.orders.Create(ctx, req)
	require.NoError(t, err)
	f.stock(t, "P1", 5)
	f.stock(t, "P2", 5)
	f.transition(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusProcessing, entity.OrderStatusShipped)

	got, err := f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:      entity.OrderStatusDelivered,
		Fulfillment: &dto.FulfillmentIntent{WarehouseID: "W1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.quantity(t, "P1"))
	assert.Equal(t, int64(2), f.quantity(t, "P2"))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "P2", got.Items[0].ProductID, "los ítems del pedido no se reordenan")

	movs, err := f.store.Movements().List(ctx, repository.MovementFilter{Type: entity.MovementTypeSALE})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	products := []string{movs[0].ProductID, movs[1].ProductID}
	assert.ElementsMatch(t, []string{"P1", "P2"}, products)
}

func TestTransitionStatus_IntencionesInvalidas(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()

	_, err := f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:      entity.OrderStatusConfirmed,
		Fulfillment: &dto.FulfillmentIntent{WarehouseID: "W1"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:      entity.OrderStatusDelivered,
		Fulfillment: &dto.FulfillmentIntent{WarehouseID: "W1"},
		Restock:     &dto.RestockIntent{WarehouseID: "W1"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:  entity.OrderStatusRefunded,
		Restock: &dto.RestockIntent{WarehouseID: "W9"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransitionStatus_RestockAlReembolsar(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()
	f.transition(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusProcessing, entity.OrderStatusShipped, entity.OrderStatusDelivered)
	_, err := f.orders.TransitionPaymentStatus(ctx, o.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusPaid})
	require.NoError(t, err)

	_, err = f.orders.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{
		Status:  entity.OrderStatusRefunded,
		Restock: &dto.RestockIntent{WarehouseID: "W1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.quantity(t, "P1"))

	movs, err := f.store.Movements().List(ctx, repository.MovementFilter{Type: entity.MovementTypeRETURN})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(2), movs[0].Delta)
}

func TestTransitionPaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fallido := f.create(t)
	_, err := f.orders.TransitionPaymentStatus(ctx, fallido.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusRefunded})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	got, err := f.orders.TransitionPaymentStatus(ctx, fallido.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusFailed, got.PaymentStatus)
	_, err = f.orders.TransitionPaymentStatus(ctx, fallido.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "FAILED es terminal")

	pagado := f.create(t)
	got, err = f.orders.TransitionPaymentStatus(ctx, pagado.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)

	_, err = f.orders.TransitionPaymentStatus(ctx, pagado.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusRefunded})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "reembolso del pago exige DELIVERED")

	f.transition(t, pagado.ID, entity.OrderStatusConfirmed, entity.OrderStatusProcessing, entity.OrderStatusShipped, entity.OrderStatusDelivered)
	got, err = f.orders.TransitionPaymentStatus(ctx, pagado.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusRefunded})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusRefunded, got.PaymentStatus)
}

func TestGet_NoCacheaLecturaAnteriorAInvalidacion(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()
	repo := &slowOrderRepo{OrderRepository: f.store.Orders()}
	uc := order.NewLifecycleUseCase(f.store, repo, f.store.Products(), f.store.Warehouses(), f.ledger, order.Deps{
		Cache:   f.cache,
		Metrics: f.rec,
	})
	repo.afterLoad = func() {
		_, err := uc.TransitionStatus(ctx, "user-1", o.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusConfirmed})
		require.NoError(t, err)
	}

	got, err := uc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Status, "la lectura cargó antes del commit")
	f.cache.mu.Lock()
	_, cached := f.cache.entries[o.ID]
	f.cache.mu.Unlock()
	assert.False(t, cached, "no se repuebla la caché con el pedido viejo")

	got, err = uc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)
	f.cache.mu.Lock()
	cachedOrder := f.cache.entries[o.ID]
	f.cache.mu.Unlock()
	require.NotNil(t, cachedOrder)
	assert.Equal(t, entity.OrderStatusConfirmed, cachedOrder.Status)
}

func TestDelete_SoloCancelados(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.orders.Delete(ctx, o.ID), domain.ErrInvalidStatusTransition)
	f.transition(t, o.ID, entity.OrderStatusCancelled)
	require.NoError(t, f.orders.Delete(ctx, o.ID))

	_, err := f.orders.Get(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.orders.Delete(ctx, o.ID), domain.ErrNotFound)
	assert.Contains(t, f.pub.types, ports.EventOrderDeleted)
}

func TestGet_UsaCacheYSeInvalida(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	ctx := context.Background()

	_, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Contains(t, f.cache.entries, o.ID)

	f.transition(t, o.ID, entity.OrderStatusConfirmed)
	assert.NotContains(t, f.cache.entries, o.ID)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)

	byNumber, err := f.orders.GetByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byNumber.ID)
}

func TestEfectosSecundariosFallidosNoFallanLaOperacion(t *testing.T) {
	f := newFixture(t)
	f.pub.fail = true
	f.cache.failSet = true
	ctx := context.Background()

	o, err := f.orders.Create(ctx, baseRequest())
	require.NoError(t, err)
	_, err = f.orders.Get(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.rec.SideEffectFailures.WithLabelValues("event")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rec.SideEffectFailures.WithLabelValues("cache")))
}

func TestListYStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)
	b := f.create(t)
	f.create(t)

	_, err := f.orders.TransitionPaymentStatus(ctx, a.ID, dto.UpdatePaymentStatusRequest{PaymentStatus: entity.PaymentStatusPaid})
	require.NoError(t, err)
	f.transition(t, b.ID, entity.OrderStatusCancelled)

	pending, err := f.orders.List(ctx, repository.OrderFilter{Status: entity.OrderStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending.Items, 2)

	_, err = f.orders.List(ctx, repository.OrderFilter{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	st, err := f.orders.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.TotalOrders)
	assert.Equal(t, int64(2), st.PendingOrders)
	assert.Equal(t, int64(1), st.CancelledOrders)
	assert.True(t, st.TotalRevenue.Equal(dec("234")), "revenue = %s", st.TotalRevenue)
	assert.True(t, st.AverageOrderValue.Equal(dec("234")))
}
