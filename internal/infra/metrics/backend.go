package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		backendRequestsTotal,
		backendRequestDuration,
	)
}

// result: ok|rejected|unavailable
var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Registration calls to the backend by result.",
		},
		[]string{"result"},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of registration calls to the backend in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"result"},
	)
)

func ObserveBackendRequest(result string, d time.Duration) {
	backendRequestsTotal.WithLabelValues(norm(result)).Inc()
	backendRequestDuration.WithLabelValues(norm(result)).Observe(d.Seconds())
}
