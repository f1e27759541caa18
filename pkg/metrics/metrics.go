// Package metrics exposes the archive's Prometheus collectors.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry when metrics are disabled.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	uploads         *prometheus.CounterVec
	uploadedBytes   prometheus.Counter
	denials         *prometheus.CounterVec
	foldersCreated  *prometheus.CounterVec
	deletions       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers all collectors with reg. Returns nil if reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	return &Metrics{
		uploads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docarchive_uploads_total",
				Help: "Total number of uploaded files by result",
			},
			[]string{"result"}, // "stored", "rejected", "failed"
		),
		uploadedBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docarchive_uploaded_bytes_total",
				Help: "Total number of bytes written below the upload root",
			},
		),
		denials: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docarchive_permission_denials_total",
				Help: "Total number of denied operations by action",
			},
			[]string{"action"},
		),
		foldersCreated: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docarchive_folders_created_total",
				Help: "Total number of folders created by kind",
			},
			[]string{"kind"},
		),
		deletions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docarchive_file_deletions_total",
				Help: "Total number of file deletions by physical cleanup outcome",
			},
			[]string{"cleanup"}, // "ok", "failed"
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "docarchive_http_request_duration_milliseconds",
				Help: "Duration of HTTP API requests in milliseconds",
				Buckets: []float64{
					1,    // 1ms - permission checks
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms - tree listings
					100,  // 100ms
					500,  // 500ms
					1000, // 1s - uploads
					5000, // 5s
				},
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) RecordUpload(result string, bytes int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
	if bytes > 0 {
		m.uploadedBytes.Add(float64(bytes))
	}
}

func (m *Metrics) RecordDenial(action string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordFolderCreated(kind string) {
	if m == nil {
		return
	}
	m.foldersCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordDeletion(cleanup string) {
	if m == nil {
		return
	}
	m.deletions.WithLabelValues(cleanup).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(float64(duration.Microseconds()) / 1000)
}
