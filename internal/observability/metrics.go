package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL
// pipeline. They are a side channel: the pipeline behaves identically whether
// or not anything scrapes them.
type Metrics struct {
	StormsExtracted       prometheus.Counter
	ObservationsExtracted prometheus.Counter
	StormsLoaded          prometheus.Counter
	ObservationsLoaded    prometheus.Counter
	ObservationsOutside   prometheus.Counter
	PipelineRunning       prometheus.Gauge

	// Batch insertion metrics.
	BatchSize           prometheus.Histogram
	BatchInsertDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StormsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hurdat2_etl",
			Name:      "storms_extracted_total",
			Help:      "Total storm aggregates parsed from the source file.",
		}),
		ObservationsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hurdat2_etl",
			Name:      "observations_extracted_total",
			Help:      "Total observation lines parsed from the source file.",
		}),
		StormsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hurdat2_etl",
			Name:      "storms_loaded_total",
			Help:      "Total storm rows inserted into the database.",
		}),
		ObservationsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hurdat2_etl",
			Name:      "observations_loaded_total",
			Help:      "Total observation rows inserted into the database.",
		}),
		ObservationsOutside: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hurdat2_etl",
			Name:      "observations_outside_region_total",
			Help:      "Observations falling outside the configured bounding region.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hurdat2_etl",
			Name:      "pipeline_running",
			Help:      "1 while the ETL run is active, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hurdat2_etl",
			Name:      "batch_size",
			Help:      "Number of observations per insert batch.",
			Buckets:   []float64{1, 10, 25, 50, 100, 250, 500, 1000},
		}),
		BatchInsertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hurdat2_etl",
			Name:      "batch_insert_duration_seconds",
			Help:      "Duration of a single observation insert batch.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
	}

	prometheus.MustRegister(
		m.StormsExtracted,
		m.ObservationsExtracted,
		m.StormsLoaded,
		m.ObservationsLoaded,
		m.ObservationsOutside,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchInsertDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StormsExtracted:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hurdat2_etl", Name: "storms_extracted_total"}),
		ObservationsExtracted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hurdat2_etl", Name: "observations_extracted_total"}),
		StormsLoaded:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hurdat2_etl", Name: "storms_loaded_total"}),
		ObservationsLoaded:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hurdat2_etl", Name: "observations_loaded_total"}),
		ObservationsOutside:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hurdat2_etl", Name: "observations_outside_region_total"}),
		PipelineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hurdat2_etl", Name: "pipeline_running"}),
		BatchSize:             prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hurdat2_etl", Name: "batch_size"}),
		BatchInsertDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hurdat2_etl", Name: "batch_insert_duration_seconds"}),
	}
}
