// Package metrics records engine operations with Prometheus.
//
// Metrics are optional. Components receive a Metrics value and call it
// unconditionally; without a registry they get a no-op implementation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Metrics observes hierarchy engine operations.
type Metrics interface {
	// RecordOperation records a completed operation (e.g. "upload", "move") and its outcome.
	RecordOperation(operation string, duration time.Duration, err error)

	// RecordBytes counts payload bytes moved into (uploads) or out of (downloads) object storage.
	RecordBytes(direction string, n int64)

	// RecordItems counts items touched by a cascading operation.
	RecordItems(operation string, n int)
}

type promMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
	itemsTotal        *prometheus.CounterVec
}

// New registers the engine metrics with reg. A nil reg returns a no-op implementation.
func New(reg prometheus.Registerer) Metrics {
	if reg == nil {
		return Noop()
	}

	return &promMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "treefs_operations_total",
				Help: "Total number of hierarchy operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "treefs_operation_duration_seconds",
				Help: "Duration of hierarchy operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					30.0,  // 30s
				},
			},
			[]string{"operation"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "treefs_bytes_total",
				Help: "Total number of payload bytes transferred by direction",
			},
			[]string{"direction"},
		),
		itemsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "treefs_cascade_items_total",
				Help: "Total number of items touched by cascading operations",
			},
			[]string{"operation"},
		),
	}
}

func (m *promMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *promMetrics) RecordBytes(direction string, n int64) {
	if n <= 0 {
		return
	}
	m.bytesTotal.WithLabelValues(direction).Add(float64(n))
}

func (m *promMetrics) RecordItems(operation string, n int) {
	if n <= 0 {
		return
	}
	m.itemsTotal.WithLabelValues(operation).Add(float64(n))
}

type noopMetrics struct{}

func Noop() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordOperation(string, time.Duration, error) {}

func (noopMetrics) RecordBytes(string, int64) {}

func (noopMetrics) RecordItems(string, int) {}

// Handler exposes gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
