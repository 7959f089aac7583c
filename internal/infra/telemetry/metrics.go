package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はnilでも呼べる
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated       prometheus.Counter
	ordersDeleted       prometheus.Counter
	stockUpdates        *prometheus.CounterVec
	propagationFailures *prometheus.CounterVec
	queueDepth          prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookstore_orders_created_total",
			Help: "Orders committed.",
		}),
		ordersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookstore_orders_deleted_total",
			Help: "Orders deleted.",
		}),
		stockUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_stock_updates_total",
			Help: "Stock writes applied by the propagator.",
		}, []string{"kind"}),
		propagationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_propagation_failures_total",
			Help: "Stock writes that could not be applied.",
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookstore_propagation_queue_depth",
			Help: "Jobs waiting in the propagation queue.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersCreated,
		m.ordersDeleted,
		m.stockUpdates,
		m.propagationFailures,
		m.queueDepth,
	)
	return m
}

// RegisterSubscribers は購読者数をscrape時に読む
func (m *Metrics) RegisterSubscribers(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "bookstore_notification_subscribers",
		Help: "Live notification subscribers.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderCreated() {
	if m != nil {
		m.ordersCreated.Inc()
	}
}

func (m *Metrics) OrderDeleted() {
	if m != nil {
		m.ordersDeleted.Inc()
	}
}

func (m *Metrics) StockUpdated(kind string) {
	if m != nil {
		m.stockUpdates.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) PropagationFailed(kind string) {
	if m != nil {
		m.propagationFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) QueueDepth(n int) {
	if m != nil {
		m.queueDepth.Set(float64(n))
	}
}
