// Package metrics keeps tempo's Prometheus collectors in a private registry.
//
// tempo has no network surface, so the registry is dumped to a
// node_exporter textfile on shutdown instead of being scraped.
//
// Metrics:
//   - tempo_operations_total{op,result} - controller operations by outcome
//   - tempo_operation_duration_seconds{op} - controller operation latency
//   - tempo_mirror_size - todos currently held in memory
//   - tempo_reminders_fired_total - reminder notifications dispatched
//   - tempo_active_timers{kind} - running reminder and ticker tasks
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds tempo's collectors
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	MirrorSize        prometheus.Gauge
	RemindersFired    prometheus.Counter
	ActiveTimers      *prometheus.GaugeVec
}

// New creates a Metrics backed by a fresh registry, so tests and multiple
// App instances never collide on registration.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tempo_operations_total",
				Help: "Total number of controller operations",
			},
			[]string{"op", "result"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tempo_operation_duration_seconds",
				Help:    "Duration of controller operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"op"},
		),

		MirrorSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tempo_mirror_size",
				Help: "Number of todos held in memory",
			},
		),

		RemindersFired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tempo_reminders_fired_total",
				Help: "Total number of reminder notifications dispatched",
			},
		),

		ActiveTimers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tempo_active_timers",
				Help: "Number of running timer tasks",
			},
			[]string{"kind"}, // "reminder" or "ticker"
		),
	}
}

// ObserveOperation records one controller operation that began at start
func (m *Metrics) ObserveOperation(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.OperationsTotal.WithLabelValues(op, result).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetMirrorSize records the current mirror length
func (m *Metrics) SetMirrorSize(n int) {
	if m == nil {
		return
	}
	m.MirrorSize.Set(float64(n))
}

// ReminderFired counts a dispatched reminder
func (m *Metrics) ReminderFired() {
	if m == nil {
		return
	}
	m.RemindersFired.Inc()
}

// SetActiveTimers records the number of running tasks of one kind
func (m *Metrics) SetActiveTimers(kind string, n int) {
	if m == nil {
		return
	}
	m.ActiveTimers.WithLabelValues(kind).Set(float64(n))
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the registry in text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
