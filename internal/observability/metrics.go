package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation pipeline.
type Metrics struct {
	SamplesPresent     prometheus.Counter
	SamplesMissing     prometheus.Counter
	ExtractionFailures prometheus.Counter
	DaysComputed       prometheus.Counter
	DaysSkipped        prometheus.Counter
	RunInProgress      prometheus.Gauge

	// Window-level metrics.
	WindowsProcessed *prometheus.CounterVec   // labels: outcome={completed,no_data,merge_failed,regrid_failed,aborted}
	ToolDuration     *prometheus.HistogramVec // labels: operation={extract,daily_mean,merge_time,remap}

	ReportingEnabled prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SamplesPresent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip_agg",
			Name:      "samples_present_total",
			Help:      "Total synoptic-hour samples located and extracted.",
		}),
		SamplesMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip_agg",
			Name:      "samples_missing_total",
			Help:      "Total synoptic-hour samples whose source file was absent.",
		}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip_agg",
			Name:      "extraction_failures_total",
			Help:      "Total samples whose source existed but extraction failed.",
		}),
		DaysComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip_agg",
			Name:      "days_computed_total",
			Help:      "Total days that produced a daily mean.",
		}),
		DaysSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip_agg",
			Name:      "days_skipped_total",
			Help:      "Total days skipped for having too few present samples.",
		}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "precip_agg",
			Name:      "run_in_progress",
			Help:      "1 while a run is processing windows, 0 otherwise.",
		}),
		WindowsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precip_agg",
			Name:      "windows_processed_total",
			Help:      "Window jobs finished, by outcome.",
		}, []string{"outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "precip_agg",
			Name:      "tool_duration_seconds",
			Help:      "External tool invocation duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"operation"}),
		ReportingEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "precip_agg",
			Name:      "reporting_enabled",
			Help:      "1 when Kafka window reporting is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.SamplesPresent,
		m.SamplesMissing,
		m.ExtractionFailures,
		m.DaysComputed,
		m.DaysSkipped,
		m.RunInProgress,
		m.WindowsProcessed,
		m.ToolDuration,
		m.ReportingEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SamplesPresent:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "precip_agg", Name: "samples_present_total"}),
		SamplesMissing:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "precip_agg", Name: "samples_missing_total"}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "precip_agg", Name: "extraction_failures_total"}),
		DaysComputed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "precip_agg", Name: "days_computed_total"}),
		DaysSkipped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "precip_agg", Name: "days_skipped_total"}),
		RunInProgress:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "precip_agg", Name: "run_in_progress"}),
		WindowsProcessed:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "precip_agg", Name: "windows_processed_total"}, []string{"outcome"}),
		ToolDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "precip_agg", Name: "tool_duration_seconds"}, []string{"operation"}),
		ReportingEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "precip_agg", Name: "reporting_enabled"}),
	}
}
