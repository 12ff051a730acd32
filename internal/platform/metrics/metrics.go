package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	NamesCreated       *prometheus.CounterVec
	StatusUpdates      *prometheus.CounterVec
	ConfigCacheHits    prometheus.Counter
	ConfigCacheMisses  prometheus.Counter
	TaskRetries        *prometheus.CounterVec
	TaskFailures       *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		NamesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nameaffirm_verified_names_created_total",
			Help: "Verified name records created, labelled by origin (api, idv, proctoring)",
		}, []string{"origin"}),
		StatusUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nameaffirm_status_updates_total",
			Help: "Verified name status updates, labelled by resulting status",
		}, []string{"status"}),
		ConfigCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameaffirm_config_cache_hits_total",
			Help: "Certificate-flag cache hits",
		}),
		ConfigCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameaffirm_config_cache_misses_total",
			Help: "Certificate-flag cache misses",
		}),
		TaskRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nameaffirm_task_retries_total",
			Help: "Reconciliation task retries, labelled by task",
		}, []string{"task"}),
		TaskFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nameaffirm_task_failures_total",
			Help: "Reconciliation tasks that exhausted their retries, labelled by task",
		}, []string{"task"}),
		RequestDurationSec: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nameaffirm_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}
