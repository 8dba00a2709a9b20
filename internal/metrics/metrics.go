package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labreserva",
			Name:      "backend_requests_total",
			Help:      "Requests to the reservation backend by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "labreserva",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of reservation backend calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	staleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "labreserva",
			Name:      "stale_responses_discarded_total",
			Help:      "Fetch responses discarded because the view filter changed mid-flight.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(backendRequests, backendDuration, staleResponses)
	})
}

// ObserveBackend records one backend call.
func ObserveBackend(endpoint string, status int, elapsed time.Duration) {
	backendRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	backendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// IncStaleResponse counts a discarded out-of-date fetch result.
func IncStaleResponse() {
	staleResponses.Inc()
}
