package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// statusTransportError labels exchanges that produced no response.
const statusTransportError = "error"

// Metrics records request counts and latencies per method and status.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vehicle_client",
			Name:      "requests_total",
			Help:      "HTTP requests issued, by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vehicle_client",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, collector := range []prometheus.Collector{metrics.requests, metrics.duration} {
		err := registerer.Register(collector)
		if err != nil {
			return nil, fmt.Errorf("registering client metrics: %w", err)
		}
	}

	return metrics, nil
}

func (m *Metrics) observe(method Method, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}

	code := statusTransportError
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}

	m.requests.WithLabelValues(method.String(), code).Inc()
	m.duration.WithLabelValues(method.String()).Observe(elapsed.Seconds())
}

// RequestCount returns the counter for method and code. Intended for tests.
func (m *Metrics) RequestCount(method Method, code string) prometheus.Counter {
	return m.requests.WithLabelValues(method.String(), code)
}
