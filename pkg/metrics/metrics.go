package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records metadata for store sync runs.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_sync_duration_seconds",
		Help:    "Duration of store sync runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sync_success",
		Help: "Successful store sync runs.",
	}, []string{"platform"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sync_failure",
		Help: "Failed store sync runs.",
	}, []string{"platform"})
	reg.MustRegister(duration, success, failure)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for a sync run against the platform.
func (s *SyncMetrics) ObserveDuration(platform string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(platform)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the platform.
func (s *SyncMetrics) IncSuccess(platform string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(platform)).Inc()
}

// IncFailure increments the failure counter for the platform.
func (s *SyncMetrics) IncFailure(platform string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(platform)).Inc()
}

// PermissionMetrics tracks permission check outcomes.
type PermissionMetrics struct {
	checks *prometheus.CounterVec
}

// NewPermissionMetrics registers permission check metrics on the provided registerer.
func NewPermissionMetrics(reg prometheus.Registerer) *PermissionMetrics {
	if reg == nil {
		return &PermissionMetrics{}
	}
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "permission_checks_total",
		Help: "Permission check outcomes by permission.",
	}, []string{"permission", "outcome"})
	reg.MustRegister(checks)
	return &PermissionMetrics{checks: checks}
}

// IncCheck records a single permission check outcome.
func (p *PermissionMetrics) IncCheck(permission string, allowed bool) {
	if p == nil || p.checks == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	p.checks.WithLabelValues(normalizeLabel(permission), outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
