package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	MembersCreated        prometheus.Counter
	MembersUpdated        prometheus.Counter
	DependentsProvisioned prometheus.Counter
	DependentsRelieved    prometheus.Counter
	DuplicatesDetected    prometheus.Counter
	SavesFailed           *prometheus.CounterVec
	NotificationsComputed prometheus.Counter
	ComputeDuration       prometheus.Histogram
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		MembersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kindred_members_created_total",
			Help: "Total number of members created in the system",
		}),
		MembersUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kindred_members_updated_total",
			Help: "Total number of member updates persisted",
		}),
		DependentsProvisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kindred_dependents_provisioned_total",
			Help: "Total number of dependent member records synthesized from covered members",
		}),
		DependentsRelieved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kindred_dependents_relieved_total",
			Help: "Total number of dependents detached from their family",
		}),
		DuplicatesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kindred_duplicates_detected_total",
			Help: "Total number of saves halted by a member id collision",
		}),
		SavesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kindred_saves_failed_total",
			Help: "Total number of failed save pipelines by phase",
		}, []string{"phase"}),
		NotificationsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kindred_notifications_computed_total",
			Help: "Total number of notifications produced by the scheduler",
		}),
		ComputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kindred_notification_compute_duration_seconds",
			Help:    "Time spent computing a tenant notification feed",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementSavesFailed records a failed save attributed to a pipeline phase.
func (m *Metrics) IncrementSavesFailed(phase string) {
	m.SavesFailed.WithLabelValues(phase).Inc()
}
