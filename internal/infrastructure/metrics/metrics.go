package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Support-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"content_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"content_type"},
	)

	// Contact answers by mode (stream/sync) and source (assistant/fallback)
	ContactAnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "contact_answers_total",
			Help:      "Total answered contact questions",
		},
		[]string{"mode", "source"},
	)

	StreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "contact_stream_duration_seconds",
			Help:      "Time from question to final contact event in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	AssistantCreationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "assistant_creations_total",
			Help:      "Remote assistants created by this process",
		},
	)

	ArchiveOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "support_api",
			Name:      "archive_operations_total",
			Help:      "Total archive storage operations",
		},
		[]string{"operation", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(contentType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(contentType).Add(float64(bytes))
	}
}

// RecordContactAnswer records one answered question
func RecordContactAnswer(mode, source string, durationSec float64) {
	ContactAnswersTotal.WithLabelValues(mode, source).Inc()
	if mode == "stream" {
		StreamDuration.Observe(durationSec)
	}
}

// RecordAssistantCreation records a remote assistant creation
func RecordAssistantCreation() {
	AssistantCreationsTotal.Inc()
}

// RecordArchiveOperation records an archive put/delete
func RecordArchiveOperation(operation, status string) {
	ArchiveOperationsTotal.WithLabelValues(operation, status).Inc()
}
