package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics instruments metric computations and their cache.
type DashboardMetrics struct {
	compute  *prometheus.HistogramVec
	cache    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewDashboardMetrics registers the dashboard collectors on reg.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	if reg == nil {
		return &DashboardMetrics{}
	}
	compute := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "dashboard",
		Name:      "compute_duration_seconds",
		Help:      "Time spent fetching and aggregating period metrics.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"scope"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dashboard",
		Name:      "cache_lookups_total",
		Help:      "Metric cache lookups by result.",
	}, []string{"scope", "result"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dashboard",
		Name:      "compute_failures_total",
		Help:      "Metric computations that failed to load data.",
	}, []string{"scope"})
	reg.MustRegister(compute, cache, failures)
	return &DashboardMetrics{compute: compute, cache: cache, failures: failures}
}

func (d *DashboardMetrics) ObserveCompute(scope string, duration time.Duration) {
	if d == nil || d.compute == nil {
		return
	}
	d.compute.WithLabelValues(normalizeLabel(scope)).Observe(duration.Seconds())
}

// CacheHit and CacheMiss feed the cache_lookups_total counter.
func (d *DashboardMetrics) CacheHit(scope string) {
	d.cacheResult(scope, "hit")
}

func (d *DashboardMetrics) CacheMiss(scope string) {
	d.cacheResult(scope, "miss")
}

func (d *DashboardMetrics) IncFailure(scope string) {
	if d == nil || d.failures == nil {
		return
	}
	d.failures.WithLabelValues(normalizeLabel(scope)).Inc()
}

func (d *DashboardMetrics) cacheResult(scope, result string) {
	if d == nil || d.cache == nil {
		return
	}
	d.cache.WithLabelValues(normalizeLabel(scope), result).Inc()
}
