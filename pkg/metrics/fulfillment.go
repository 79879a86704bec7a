package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records order lifecycle outcomes.
type FulfillmentMetrics struct {
	created    *prometheus.CounterVec
	completed  prometheus.Counter
	voided     prometheus.Counter
	shortfalls prometheus.Counter
	duration   *prometheus.HistogramVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by outcome status.",
	}, []string{"status"})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Orders transitioned to completed.",
	})
	voided := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_voided_total",
		Help: "Orders administratively reversed.",
	})
	shortfalls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_stock_shortfalls_total",
		Help: "Order creations rejected for insufficient stock.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_operation_duration_seconds",
		Help:    "Duration of order fulfillment operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(created, completed, voided, shortfalls, duration)
	return &FulfillmentMetrics{
		created:    created,
		completed:  completed,
		voided:     voided,
		shortfalls: shortfalls,
		duration:   duration,
	}
}

// IncCreated increments the created counter for the given terminal status.
func (m *FulfillmentMetrics) IncCreated(status string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(status).Inc()
}

// IncCompleted increments the completed counter.
func (m *FulfillmentMetrics) IncCompleted() {
	if m == nil || m.completed == nil {
		return
	}
	m.completed.Inc()
}

// IncVoided increments the voided counter.
func (m *FulfillmentMetrics) IncVoided() {
	if m == nil || m.voided == nil {
		return
	}
	m.voided.Inc()
}

// IncShortfall increments the insufficient-stock counter.
func (m *FulfillmentMetrics) IncShortfall() {
	if m == nil || m.shortfalls == nil {
		return
	}
	m.shortfalls.Inc()
}

// ObserveDuration records the duration for the named operation.
func (m *FulfillmentMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}
