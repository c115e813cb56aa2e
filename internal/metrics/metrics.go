package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyglass_upstream_calls_total",
			Help: "Total upstream API calls (Open-Meteo, Nominatim)",
		},
		[]string{"service", "endpoint", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skyglass_upstream_latency_seconds",
			Help:    "Upstream API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyglass_refreshes_total",
			Help: "Forecast refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	StaleResultsDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skyglass_stale_results_discarded_total",
			Help: "Refresh results dropped because a newer cycle was already applied",
		},
	)
)
