// Package metrics holds the prometheus collectors exposed on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoshare",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoshare",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"method", "endpoint"},
	)

	// Uploads by terminal pipeline state
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoshare",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total upload pipeline runs",
		},
		[]string{"outcome"},
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "videoshare",
			Subsystem: "ingest",
			Name:      "upload_duration_seconds",
			Help:      "Upload pipeline duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	TranscodesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "videoshare",
			Subsystem: "ingest",
			Name:      "transcodes_in_flight",
			Help:      "Number of running ffmpeg processes",
		},
	)

	TranscodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoshare",
			Subsystem: "ingest",
			Name:      "transcode_duration_seconds",
			Help:      "ffmpeg run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoshare",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total object store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoshare",
			Subsystem: "storage",
			Name:      "duration_seconds",
			Help:      "Object store operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"backend", "operation"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a finished pipeline run
func RecordUpload(outcome string, durationSec float64) {
	UploadsTotal.WithLabelValues(outcome).Inc()
	UploadDuration.Observe(durationSec)
}

func RecordTranscode(status string, durationSec float64) {
	TranscodeDuration.WithLabelValues(status).Observe(durationSec)
}

func RecordStoreOperation(backend, operation, status string, durationSec float64) {
	StoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StoreDuration.WithLabelValues(backend, operation).Observe(durationSec)
}
