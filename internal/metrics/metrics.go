package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherscreen_api_calls_total",
			Help: "Total weather provider API calls",
		},
		[]string{"endpoint", "status"},
	)

	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherscreen_api_latency_seconds",
			Help:    "Weather provider API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	LocationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherscreen_location_requests_total",
			Help: "Location acquisition attempts by outcome",
		},
		[]string{"outcome"},
	)

	StateUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherscreen_state_updates_total",
			Help: "Screen state fields replaced by the fetch sequence",
		},
		[]string{"field"},
	)
)
