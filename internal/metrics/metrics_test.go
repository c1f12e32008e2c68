package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("notes", "ok", time.Millisecond)
		m.ObserveFlush("ok")
		m.SetPending(1, 2)
		m.SetLoaded(3)
	})
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("notes", "ok", 10*time.Millisecond)
	m.ObserveRequest("notes", "ok", 20*time.Millisecond)
	m.ObserveRequest("change-notes", "error", time.Millisecond)
	m.ObserveFlush("error")
	m.SetPending(3, 1)
	m.SetLoaded(40)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("notes", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("change-notes", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Flushes.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PendingEdits.WithLabelValues("check")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PendingEdits.WithLabelValues("position")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.LoadedNotes))
}
