// Package metrics exposes Prometheus collectors for the scheduling core.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timetable"

// Replace outcomes.
const (
	ReplaceOK      = "ok"
	ReplaceInvalid = "invalid"
	ReplaceError   = "error"
)

type Metrics struct {
	replaces     *prometheus.CounterVec
	skipped      prometheus.Counter
	conflicts    prometheus.Gauge
	scanDuration prometheus.Histogram
	cache        *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		replaces: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_replace_total",
			Help:      "Section schedule replacements by result.",
		}, []string{"result"}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_sessions_skipped_total",
			Help:      "Submitted sessions dropped because a reference did not resolve.",
		}),
		conflicts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_conflicts",
			Help:      "Conflicting session pairs found by the last scan.",
		}),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conflict_scan_duration_seconds",
			Help:      "Duration of full conflict scans.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_cache_requests_total",
			Help:      "Conflict report cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveReplace(result string, skipped int) {
	if m == nil {
		return
	}
	m.replaces.WithLabelValues(result).Inc()
	if skipped > 0 {
		m.skipped.Add(float64(skipped))
	}
}

func (m *Metrics) ObserveScan(d time.Duration, conflicts int) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(d.Seconds())
	m.conflicts.Set(float64(conflicts))
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
