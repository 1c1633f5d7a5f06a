// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of leads accepted by the intake service",
		},
	)

	LeadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_rejected_total",
			Help: "Total number of intake payloads rejected, by error code",
		},
		[]string{"error_code"},
	)

	FollowUpFlags = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_follow_up_flags_total",
			Help: "Total number of follow-up flag requests received",
		},
	)

	AdminReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_admin_reads_total",
			Help: "Total number of authorized full-collection reads",
		},
	)

	NotifierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifier_failures_total",
			Help: "Total number of collaborator calls that failed after retry",
		},
		[]string{"notifier", "event"},
	)

	NotifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lead_notifier_duration_seconds",
			Help: "Duration of collaborator calls in seconds",
		},
		[]string{"notifier", "event"},
	)

	StoredLeads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_stored",
			Help: "Number of leads currently held in the in-process store",
		},
	)
)
