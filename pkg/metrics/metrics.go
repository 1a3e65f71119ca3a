package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retail_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Sale metrics
	SalesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retail_sales_created_total",
			Help: "Total number of completed sales",
		},
	)

	SalesCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retail_sales_cancelled_total",
			Help: "Total number of cancelled sales",
		},
	)

	SaleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_sale_failures_total",
			Help: "Total number of rejected sale attempts",
		},
		[]string{"reason"},
	)

	// Stock metrics
	StockMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_stock_movements_total",
			Help: "Total number of stock ledger movements",
		},
		[]string{"type"},
	)
)
