// Package metrics exposes Prometheus instrumentation for the cache, the
// catalog adapters, the recommender and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Failure kinds used as the kind label of CatalogFailures.
const (
	FailureTimeout     = "timeout"
	FailureUnavailable = "unavailable"
	FailureRateLimited = "rate_limited"
	FailureMalformed   = "malformed"
	FailureBreakerOpen = "breaker_open"
	FailureOther       = "other"
)

var (
	// Cache Metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreel_cache_requests_total",
			Help: "Result cache lookups by operation and result",
		},
		[]string{"op", "result"}, // result: "hit", "miss"
	)

	// Catalog Metrics
	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreel_catalog_request_duration_seconds",
			Help:    "Duration of catalog adapter calls that missed the cache",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"catalog", "op"},
	)

	CatalogFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreel_catalog_failures_total",
			Help: "Catalog calls that ended as transient failures",
		},
		[]string{"catalog", "op", "kind"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookreel_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreel_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Recommendation Metrics
	CandidatesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreel_candidates_generated_total",
			Help: "Candidates accepted into the pool, by strategy",
		},
		[]string{"strategy"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreel_recommendation_duration_seconds",
			Help:    "Time to build a recommendation list",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"selected_type"},
	)

	RecommendationsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreel_recommendations_returned",
			Help:    "Number of recommendations in a response",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
		[]string{"selected_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreel_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreel_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreel_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// CacheObserver forwards result cache hits and misses to CacheRequests.
type CacheObserver struct{}

// CacheHit implements cache.Observer.
func (CacheObserver) CacheHit(op string) {
	CacheRequests.WithLabelValues(op, "hit").Inc()
}

// CacheMiss implements cache.Observer.
func (CacheObserver) CacheMiss(op string) {
	CacheRequests.WithLabelValues(op, "miss").Inc()
}

// RecordCatalogCall records the duration of a catalog call
func RecordCatalogCall(catalog, op string, duration time.Duration) {
	CatalogRequestDuration.WithLabelValues(catalog, op).Observe(duration.Seconds())
}

// RecordCatalogFailure counts a transient catalog failure
func RecordCatalogFailure(catalog, op, kind string) {
	CatalogFailures.WithLabelValues(catalog, op, kind).Inc()
}

// RecordBreakerTransition records a circuit breaker state change
func RecordBreakerTransition(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// RecordCandidates counts candidates a strategy added to the pool
func RecordCandidates(strategy string, n int) {
	if n > 0 {
		CandidatesGenerated.WithLabelValues(strategy).Add(float64(n))
	}
}

// RecordRecommendation records the latency and size of a recommendation response
func RecordRecommendation(selectedType string, duration time.Duration, returned int) {
	RecommendationDuration.WithLabelValues(selectedType).Observe(duration.Seconds())
	RecommendationsReturned.WithLabelValues(selectedType).Observe(float64(returned))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit counts a request rejected by the API rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
