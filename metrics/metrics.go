// Package metrics provides Prometheus metrics for the medicine library API.
// It exports:
//   - http_request_total / http_request_duration_seconds / http_request_in_flight for the HTTP surface
//   - catalog_medicines and catalog_build_total for catalog refreshes
//   - enrichment_requests_total, enrichment_stale_total and enrichment_debounced_total for the
//     AI enrichment slots
//   - sessions_active and rate_limiter_buckets_total
//
// All metrics are registered with the Prometheus default registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	CatalogMedicines = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_medicines",
			Help: "Medicines in the current catalog by origin",
		},
		[]string{"origin"},
	)

	CatalogBuildTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_build_total",
			Help: "Catalog builds by result",
		},
		[]string{"result"},
	)

	EnrichmentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_requests_total",
			Help: "Text generation requests issued by enrichment slots, by outcome",
		},
		[]string{"slot", "outcome"},
	)

	EnrichmentStaleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_stale_total",
			Help: "Enrichment responses discarded because a newer subject superseded them",
		},
		[]string{"slot"},
	)

	EnrichmentDebouncedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_debounced_total",
			Help: "Scheduled enrichment fetches dropped before firing",
		},
		[]string{"slot"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Browsing sessions currently held in memory",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in the last cleanup window)",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(CatalogMedicines)
	prometheus.MustRegister(CatalogBuildTotal)
	prometheus.MustRegister(EnrichmentRequestsTotal)
	prometheus.MustRegister(EnrichmentStaleTotal)
	prometheus.MustRegister(EnrichmentDebouncedTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}
