// Package metrics provides Prometheus instrumentation for the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the application metrics. A nil *Collector is valid and
// records nothing, so wiring metrics stays optional in tests.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StoreOpsTotal   *prometheus.CounterVec
}

// NewCollector registers the application metrics on the default registry.
func NewCollector(namespace string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"path"},
		),
		StoreOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Record store operations by op and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, path, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(method, path, status).Inc()
	c.RequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveStoreOp records one record-store operation.
func (c *Collector) ObserveStoreOp(op string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.StoreOpsTotal.WithLabelValues(op, outcome).Inc()
}
