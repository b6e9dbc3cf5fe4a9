// Package metrics expone los contadores Prometheus del servicio (movimientos, rechazos,
// transiciones de pedidos, efectos secundarios fallidos y latencia HTTP).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stock_orders"

// Recorder agrupa los colectores. Un *Recorder nil es válido y no registra nada.
type Recorder struct {
	MovementsTotal       *prometheus.CounterVec
	StockRejectionsTotal prometheus.Counter
	OrdersCreatedTotal   prometheus.Counter
	TransitionsTotal     *prometheus.CounterVec
	SideEffectFailures   *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New crea los colectores y los registra en reg (prometheus.DefaultRegisterer en producción,
// un registro propio en tests).
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		MovementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock confirmados por tipo.",
		}, []string{"type"}),
		StockRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_rejections_total",
			Help:      "Movimientos rechazados por stock insuficiente.",
		}),
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Pedidos creados.",
		}),
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Transiciones de estado de pedidos por máquina (status|payment) y estado destino.",
		}, []string{"machine", "to"}),
		SideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Fallos de efectos secundarios (cache, event).",
		}, []string{"kind"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(
			r.MovementsTotal, r.StockRejectionsTotal, r.OrdersCreatedTotal, r.TransitionsTotal,
			r.SideEffectFailures, r.HTTPRequestsTotal, r.HTTPRequestDuration,
		)
	}
	return r
}

// MovementRecorded cuenta un movimiento confirmado.
func (r *Recorder) MovementRecorded(movementType string) {
	if r == nil {
		return
	}
	r.MovementsTotal.WithLabelValues(movementType).Inc()
}

// StockRejected cuenta un rechazo por stock insuficiente.
func (r *Recorder) StockRejected() {
	if r == nil {
		return
	}
	r.StockRejectionsTotal.Inc()
}

// OrderCreated cuenta un pedido creado.
func (r *Recorder) OrderCreated() {
	if r == nil {
		return
	}
	r.OrdersCreatedTotal.Inc()
}

// Transition cuenta una transición aplicada.
func (r *Recorder) Transition(machine, to string) {
	if r == nil {
		return
	}
	r.TransitionsTotal.WithLabelValues(machine, to).Inc()
}

// SideEffectFailed cuenta un fallo de caché o de publicación de eventos.
func (r *Recorder) SideEffectFailed(kind string) {
	if r == nil {
		return
	}
	r.SideEffectFailures.WithLabelValues(kind).Inc()
}

// ObserveHTTP registra una petición HTTP terminada.
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
