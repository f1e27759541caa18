package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.Nil(t, New(nil))

	assert.NotPanics(t, func() {
		m.RecordUpload("stored", 10)
		m.RecordDenial("read")
		m.RecordFolderCreated("COURSE")
		m.RecordDeletion("ok")
		m.ObserveRequest("GET", "/health", 200, time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.RecordUpload("stored", 100)
	m.RecordUpload("stored", 50)
	m.RecordUpload("rejected", 0)
	m.RecordDenial("write")
	m.RecordFolderCreated("SUBFOLDER")
	m.RecordFolderCreated("SUBFOLDER")
	m.RecordDeletion("failed")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.uploads.WithLabelValues("stored")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.uploads.WithLabelValues("rejected")))
	assert.Equal(t, float64(150), testutil.ToFloat64(m.uploadedBytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.denials.WithLabelValues("write")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.foldersCreated.WithLabelValues("SUBFOLDER")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deletions.WithLabelValues("failed")))
}
