package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storegoals"

// CronJobMetrics records cron job outcomes, labelled by job name. A nil or
// unregistered value is a no-op.
type CronJobMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

func cronCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cron", Name: name, Help: help,
	}, []string{"job"})
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Duration of cron jobs in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		success: cronCounter("job_success_total", "Successful cron job executions."),
		failure: cronCounter("job_failure_total", "Failed cron job executions."),
		skipped: cronCounter("cycle_skipped_total", "Cron runs skipped because another worker held the lock."),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run; alert when the period sync goes stale.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.skipped, m.lastSuccess)
	return m
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if c != nil && c.duration != nil {
		c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
	}
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if c != nil && c.success != nil {
		c.success.WithLabelValues(normalizeLabel(job)).Inc()
		c.lastSuccess.WithLabelValues(normalizeLabel(job)).SetToCurrentTime()
	}
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c != nil && c.failure != nil {
		c.failure.WithLabelValues(normalizeLabel(job)).Inc()
	}
}

// IncSkipped counts a run that did not get the lock.
func (c *CronJobMetrics) IncSkipped(job string) {
	if c != nil && c.skipped != nil {
		c.skipped.WithLabelValues(normalizeLabel(job)).Inc()
	}
}
