// Package metrics provides Prometheus metrics for syncstat.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "syncstat"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// HTTPRateLimitedTotal counts requests rejected by the rate limiter.
	HTTPRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter",
		},
	)
)

// Dataset metrics
var (
	// DatasetRecords tracks records in the current dataset.
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Number of records in the current dataset",
		},
	)

	// DatasetInvalidDates tracks records whose date could not be parsed.
	DatasetInvalidDates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "invalid_dates",
			Help:      "Number of records in the current dataset without a valid date",
		},
	)

	// DatasetFiles tracks files in the current dataset.
	DatasetFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "files",
			Help:      "Number of files in the current dataset",
		},
	)

	// DatasetLoadsTotal counts dataset loads by result.
	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "loads_total",
			Help:      "Total dataset loads",
		},
		[]string{"result"}, // success, failure
	)

	// DatasetLoadDuration tracks how long a dataset load takes.
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "load_duration_seconds",
			Help:      "Dataset load latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// DatasetLastLoadTimestamp records the time of the last successful load.
	DatasetLastLoadTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "last_load_timestamp_seconds",
			Help:      "Unix time of the last successful dataset load",
		},
	)
)

// Aggregation metrics
var (
	// AggregationDuration tracks view computation latency.
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "duration_seconds",
			Help:      "View computation latency in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"view"},
	)

	// ServersByZone tracks servers per overall health zone in the full dataset.
	ServersByZone = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "servers",
			Name:      "by_zone",
			Help:      "Number of servers per overall health zone",
		},
		[]string{"zone"},
	)
)

// Info metric
var (
	// BuildInfo exposes build information.
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "commit", "build_time"},
	)
)

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, commit, buildTime string) {
	BuildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}
