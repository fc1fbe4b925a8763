package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slotmarket"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		},
		[]string{"route", "status"},
	)

	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Per-id lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)

	temporalFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temporal_fallbacks_total",
			Help:      "Records whose date or time could not be parsed.",
		},
		[]string{"stage"},
	)

	eligibilityDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_decisions_total",
			Help:      "Review eligibility decisions.",
		},
		[]string{"decision"},
	)

	dashboardDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_duration_seconds",
			Help:      "Time to compute a dashboard.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	backendErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Failed primary collection fetches.",
		},
		[]string{"operation"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			lookups,
			temporalFallbacks,
			eligibilityDecisions,
			dashboardDuration,
			backendErrors,
		)
	})
}

func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// IncLookup counts a lookup; result is "hit", "miss", "error" or "timeout".
func IncLookup(kind, result string) {
	lookups.WithLabelValues(kind, result).Inc()
}

func IncTemporalFallback(stage string) {
	temporalFallbacks.WithLabelValues(stage).Inc()
}

func IncEligibility(decision string) {
	eligibilityDecisions.WithLabelValues(decision).Inc()
}

func ObserveDashboard(role string, took time.Duration) {
	dashboardDuration.WithLabelValues(role).Observe(took.Seconds())
}

func IncBackendError(operation string) {
	backendErrors.WithLabelValues(operation).Inc()
}
