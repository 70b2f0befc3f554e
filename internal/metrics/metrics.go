package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitorapi_requests_total",
			Help: "Total number of requests per endpoint",
		},
		[]string{"path"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monitorapi_request_duration_seconds",
			Help:    "Request duration in seconds per endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitorapi_request_errors_total",
			Help: "Total number of error responses per endpoint and status code",
		},
		[]string{"path", "code"},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitorapi_cache_hits_total",
			Help: "Aggregation cache hits per endpoint",
		},
		[]string{"path"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitorapi_cache_misses_total",
			Help: "Aggregation cache misses per endpoint",
		},
		[]string{"path"},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitorapi_live_clients",
			Help: "Connected live demand stream clients",
		},
	)
)
