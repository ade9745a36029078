// Package metrics exposes run counters for colstats using Prometheus
// collectors on a private registry.
//
// A nil *Collector is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "colstats"

// Collector records the progress of one statistics run.
type Collector struct {
	registry *prometheus.Registry
	rows     prometheus.Counter
	chunks   prometheus.Counter
	columns  prometheus.Gauge
	jobs     prometheus.Gauge
	planned  prometheus.Gauge
	duration prometheus.Histogram
	runs     *prometheus.CounterVec // by scan mode
}

// NewCollector creates a collector and registers its metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_scanned_total",
			Help:      "Data rows fed to the statistics engine.",
		}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_processed_total",
			Help:      "Parallel chunks that completed.",
		}),
		columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "columns",
			Help:      "Columns selected for statistics.",
		}),
		jobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs",
			Help:      "Workers used by the last run.",
		}),
		planned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_planned",
			Help:      "Chunks the last run was split into.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a statistics run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Statistics runs by scan mode.",
		}, []string{"mode"}),
	}
	c.registry.MustRegister(c.rows, c.chunks, c.columns, c.jobs, c.planned, c.duration, c.runs)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObservePlan records the scan mode and layout chosen for a run.
func (c *Collector) ObservePlan(mode string, jobs, chunks int) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(mode).Inc()
	c.jobs.Set(float64(jobs))
	c.planned.Set(float64(chunks))
}

// ObserveRows adds n scanned rows.
func (c *Collector) ObserveRows(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.rows.Add(float64(n))
}

// ObserveChunk counts a finished parallel chunk.
func (c *Collector) ObserveChunk() {
	if c == nil {
		return
	}
	c.chunks.Inc()
}

// SetColumns records the number of selected columns.
func (c *Collector) SetColumns(n int) {
	if c == nil {
		return
	}
	c.columns.Set(float64(n))
}

// ObserveDuration records the wall time of a run.
func (c *Collector) ObserveDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.duration.Observe(d.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format
// read by the node exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
