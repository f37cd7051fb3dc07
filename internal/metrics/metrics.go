package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/novaframes/content-admin/internal/records/domain"
)

var (
	storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "content",
			Name:      "store_operations_total",
			Help:      "Document store operations by collection, operation and result",
		},
		[]string{"collection", "op", "result"},
	)

	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "content",
			Name:      "store_operation_duration_seconds",
			Help:      "Document store operation latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection", "op"},
	)

	blobOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "content",
			Name:      "blob_operations_total",
			Help:      "Blob uploads and deletions by driver and result",
		},
		[]string{"driver", "op", "result"},
	)

	blobBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "content",
			Name:      "blob_uploaded_bytes_total",
			Help:      "Bytes accepted by the blob uploader",
		},
		[]string{"driver"},
	)

	sweptBlobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "content",
			Name:      "sweeper_deleted_blobs_total",
			Help:      "Orphaned blobs removed by the reconciliation sweep",
		},
	)
)

func init() {
	prometheus.MustRegister(storeOperations, storeDuration, blobOperations, blobBytes, sweptBlobs)
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal)
}

// ObserveStore records one store call.
func ObserveStore(collection, op string, started time.Time, err error) {
	storeDuration.WithLabelValues(collection, op).Observe(time.Since(started).Seconds())
	storeOperations.WithLabelValues(collection, op, result(err)).Inc()
}

// ObserveBlob records one blob call; size is only counted for successful uploads.
func ObserveBlob(driver, op string, size int, err error) {
	blobOperations.WithLabelValues(driver, op, result(err)).Inc()
	if err == nil && op == "upload" {
		blobBytes.WithLabelValues(driver).Add(float64(size))
	}
}

// ObserveSweep counts blobs deleted by one sweep.
func ObserveSweep(deleted int) {
	sweptBlobs.Add(float64(deleted))
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrUploadFailed):
		return "rejected"
	case errors.Is(err, domain.ErrWriteRejected):
		return "rejected"
	default:
		return "error"
	}
}
