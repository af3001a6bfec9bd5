package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every brandtheme collector. A dedicated registry keeps tests free of duplicate
// registration panics on the global one.
var Registry = prometheus.NewRegistry()

var (
	CacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandtheme_cache_requests_total",
		Help: "Cache lookups by cache name and result (hit|miss).",
	}, []string{"cache", "result"})

	CacheInvalidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandtheme_cache_invalidations_total",
		Help: "Per-key and full invalidations by cache name.",
	}, []string{"cache", "scope"})

	CodeLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandtheme_code_lookups_total",
		Help: "Code resolutions by strategy and result (found|not_found|error).",
	}, []string{"strategy", "result"})

	StoreWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandtheme_store_writes_total",
		Help: "Configuration writes by operation and result.",
	}, []string{"op", "result"})

	InvalidationHookCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandtheme_invalidation_hook_calls_total",
		Help: "Calls from a writer process to the server invalidation endpoints, by result.",
	}, []string{"result"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandtheme_http_requests_total",
		Help: "HTTP requests by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brandtheme_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CacheRequests,
		CacheInvalidations,
		CodeLookups,
		StoreWrites,
		InvalidationHookCalls,
		HTTPRequests,
		HTTPDuration,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
