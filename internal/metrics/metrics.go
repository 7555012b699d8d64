// README: Prometheus metrics for lookups, provider fallbacks and background work.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts answered lookups by operation (nearby, search, details) and source.
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_lookups_total",
		Help: "Answered place lookups by operation and result source.",
	}, []string{"operation", "source"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_provider_requests_total",
		Help: "Calls to the external mapping provider by method and outcome.",
	}, []string{"method", "outcome"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "placemap_provider_request_duration_seconds",
		Help:    "Latency of external mapping provider calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	ProviderCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_provider_cache_total",
		Help: "Provider response cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	CachedPlaces = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_cache_writes_total",
		Help: "External places written back to the local store by outcome.",
	}, []string{"outcome"})

	BackgroundTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_background_tasks_total",
		Help: "Background tasks by outcome (ok, failed, dropped).",
	}, []string{"outcome"})
)
