// Package metrics exposes prometheus collectors for the print pipeline
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricReceiptsComposedTotal   = "order_printing_receipts_composed_total"
	MetricEncodedBytesTotal       = "order_printing_encoded_bytes_total"
	MetricDispatchTotal           = "order_printing_dispatch_total"
	MetricDispatchDurationSeconds = "order_printing_dispatch_duration_seconds"
)

// Dispatch targets.
const (
	TargetRemote = "remote"
	TargetLocal  = "local"
)

// Dispatch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the pipeline collectors on a private registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	receiptsComposed *prometheus.CounterVec
	encodedBytes     *prometheus.CounterVec
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		receiptsComposed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricReceiptsComposedTotal,
				Help: "Receipts composed, by printer family",
			},
			[]string{"family"},
		),
		encodedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricEncodedBytesTotal,
				Help: "Bytes produced by the encoder, by printer family",
			},
			[]string{"family"},
		),
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricDispatchTotal,
				Help: "Dispatched print jobs, by target and outcome",
			},
			[]string{"target", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricDispatchDurationSeconds,
				Help:    "Time spent dispatching a print job",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"target"},
		),
	}

	m.registry.MustRegister(
		m.receiptsComposed,
		m.encodedBytes,
		m.dispatchTotal,
		m.dispatchDuration,
	)

	return m
}

// RecordComposed counts one composed receipt
func (m *Metrics) RecordComposed(family string) {
	if m == nil {
		return
	}
	m.receiptsComposed.WithLabelValues(family).Inc()
}

// RecordEncoded adds the size of an encoded buffer
func (m *Metrics) RecordEncoded(family string, n int) {
	if m == nil {
		return
	}
	m.encodedBytes.WithLabelValues(family).Add(float64(n))
}

// RecordDispatch counts a dispatch attempt and observes its duration
func (m *Metrics) RecordDispatch(target string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.dispatchTotal.WithLabelValues(target, outcome).Inc()
	m.dispatchDuration.WithLabelValues(target).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
