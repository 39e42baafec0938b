package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReplace(ReplaceOK, 2)
	m.ObserveReplace(ReplaceOK, 0)
	m.ObserveReplace(ReplaceInvalid, 0)
	m.ObserveScan(10*time.Millisecond, 3)
	m.ObserveCache(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.replaces.WithLabelValues(ReplaceOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replaces.WithLabelValues(ReplaceInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.conflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("hit")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReplace(ReplaceError, 1)
		m.ObserveScan(time.Second, 1)
		m.ObserveCache(false)
	})
}
