// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	PreOrdersSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_preorders_submitted_total",
			Help: "Total number of pre-orders accepted",
		},
	)

	PreOrderQuantity = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_preorder_quantity_total",
			Help: "Sum of quantities across accepted pre-orders",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_uploads_total",
			Help: "Image uploads by outcome",
		},
		[]string{"outcome"},
	)

	ListCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_list_cache_hits_total",
			Help: "Product list cache hits",
		},
	)

	ListCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_list_cache_misses_total",
			Help: "Product list cache misses",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_errors_total",
			Help: "Persistence errors by operation",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records one finished request.
func RecordAPIRequest(method, route, statusCode string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordPreOrder counts an accepted pre-order.
func RecordPreOrder(quantity int) {
	PreOrdersSubmitted.Inc()
	PreOrderQuantity.Add(float64(quantity))
}

// RecordUpload counts an upload attempt by outcome (ok, rejected, failed).
func RecordUpload(outcome string) {
	UploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreError counts a failed persistence call.
func RecordStoreError(operation string) {
	StoreErrors.WithLabelValues(operation).Inc()
}
