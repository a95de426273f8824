package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline metrics, registered explicitly from the composition root (no init()).
var (
	CompilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchfed",
			Name:      "query_compiles_total",
			Help:      "Total number of query compilations per backend",
		},
		[]string{"backend"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchfed",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend search request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "status"},
	)

	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchfed",
			Name:      "backend_errors_total",
			Help:      "Total number of failed backend search requests",
		},
		[]string{"backend"},
	)

	SynonymCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchfed",
			Name:      "synonym_cache_total",
			Help:      "Synonym table cache lookups by result",
		},
		[]string{"result"},
	)

	TermCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchfed",
			Name:      "term_cache_total",
			Help:      "Term-store label cache lookups by result",
		},
		[]string{"result"},
	)
)

// RegisterSearchMetrics registers the pipeline metrics with the default registry.
func RegisterSearchMetrics() {
	prometheus.MustRegister(
		CompilesTotal,
		BackendRequestDuration,
		BackendErrorsTotal,
		SynonymCacheTotal,
		TermCacheTotal,
	)
}
