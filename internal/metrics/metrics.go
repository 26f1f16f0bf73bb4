package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielist_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movielist_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// List membership metrics
	ListOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielist_list_operations_total",
			Help: "List operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Catalog metrics
	CatalogRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielist_catalog_requests_total",
			Help: "Upstream catalog searches by outcome",
		},
		[]string{"outcome"},
	)

	CatalogRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movielist_catalog_request_duration_seconds",
			Help:    "Upstream catalog search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ListOperations)
	prometheus.MustRegister(CatalogRequests)
	prometheus.MustRegister(CatalogRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
