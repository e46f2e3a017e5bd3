package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/steadifi/contract-harness/internal/domain"
)

const namespace = "harness"

// Metrics holds the Prometheus collectors for chain client calls
type Metrics struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	GasUsed         *prometheus.CounterVec
}

// New registers the collectors on a fresh registry so multiple harness
// contexts in one test binary do not collide on the default registerer.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_requests_total",
			Help:      "Chain client calls by operation and outcome",
		}, []string{"op", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_request_duration_seconds",
			Help:      "Chain client call latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"op"}),
		GasUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gas_used_total",
			Help:      "Gas consumed by harness transactions",
		}, []string{"op"}),
	}
}

// Observe records one call outcome
func (m *Metrics) Observe(op string, start time.Time, err error) {
	m.Requests.WithLabelValues(op, status(err)).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordGas adds the gas a transaction consumed
func (m *Metrics) RecordGas(op string, gas uint64) {
	m.GasUsed.WithLabelValues(op).Add(float64(gas))
}

// WriteTextfile dumps the registry in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTxFailed):
		return "reverted"
	default:
		return "error"
	}
}
