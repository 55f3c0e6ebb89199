package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the client's Prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	staleFetches   prometheus.Counter
	sessionChanges *prometheus.CounterVec
	catalogSize    prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Catalog operations by operation and result.",
		}, []string{"op", "result"}),
		staleFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_stale_fetches_total",
			Help: "Fetch responses discarded because a newer fetch was already applied.",
		}),
		sessionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session notifications by resulting state.",
		}, []string{"state"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products currently held in the in-memory catalog.",
		}),
	}
	m.registry.MustRegister(m.operations, m.staleFetches, m.sessionChanges, m.catalogSize)
	return m
}

// ObserveOperation counts op with an ok/error result. Safe on a nil receiver.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// ObserveStaleFetch counts a discarded out-of-order fetch.
func (m *Metrics) ObserveStaleFetch() {
	if m == nil {
		return
	}
	m.staleFetches.Inc()
}

// ObserveSession counts a session transition into state.
func (m *Metrics) ObserveSession(state string) {
	if m == nil {
		return
	}
	m.sessionChanges.WithLabelValues(state).Inc()
}

// SetCatalogSize records the size of the applied catalog snapshot.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogSize.Set(float64(n))
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
