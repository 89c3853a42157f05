package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	monitorRequestsTotal   *prometheus.CounterVec
	monitorLatencySeconds  *prometheus.HistogramVec
	monitorErrorsTotal     *prometheus.CounterVec
	snapshotRebuildsTotal  prometheus.Counter
	snapshotCacheHitsTotal prometheus.Counter
	uploadRequestsTotal    *prometheus.CounterVec
	uploadRejectedTotal    *prometheus.CounterVec
	uploadLatencySeconds   prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used for monitoring observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		monitorRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_requests_total",
			Help: "Total number of monitoring API requests served.",
		}, []string{"method", "route", "status"})

		monitorLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "monitor_latency_seconds",
			Help:    "Latency distribution for monitoring API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		monitorErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_errors_total",
			Help: "Total number of error responses returned by monitoring endpoints.",
		}, []string{"method", "route", "status"})

		snapshotRebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_snapshot_rebuilds_total",
			Help: "Number of times the monitoring snapshot was rebuilt from the store.",
		})

		snapshotCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_snapshot_cache_hits_total",
			Help: "Number of snapshot reads served from cache.",
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Total number of accepted artifact uploads.",
		}, []string{"type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Total number of rejected artifact uploads.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Latency distribution for artifact uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		prometheus.MustRegister(
			monitorRequestsTotal,
			monitorLatencySeconds,
			monitorErrorsTotal,
			snapshotRebuildsTotal,
			snapshotCacheHitsTotal,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
		)
	})
}

// MonitorRequests exposes the counter for monitoring requests.
func MonitorRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return monitorRequestsTotal
}

// MonitorLatency exposes the latency histogram for monitoring requests.
func MonitorLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return monitorLatencySeconds
}

// MonitorErrors exposes the counter for monitoring error responses.
func MonitorErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return monitorErrorsTotal
}

// SnapshotRebuilds exposes the counter for snapshot rebuilds.
func SnapshotRebuilds() prometheus.Counter {
	RegisterMetrics()
	return snapshotRebuildsTotal
}

// SnapshotCacheHits exposes the counter for snapshot cache hits.
func SnapshotCacheHits() prometheus.Counter {
	RegisterMetrics()
	return snapshotCacheHitsTotal
}

// UploadRequests exposes the counter for accepted uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the histogram for upload latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}
