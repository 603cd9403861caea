// Package obs holds client-side observability: counters and latency
// histograms for outbound API requests.
package obs

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments outbound HTTP requests issued by the API client.
type Metrics struct {
	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	networkErrors   prometheus.Counter
}

// NewMetrics builds and registers the request metrics on reg. Pass
// prometheus.DefaultRegisterer outside tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opencircle_client_in_flight_requests",
			Help: "In-flight API requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opencircle_client_requests_total",
				Help: "Total number of API requests.",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opencircle_client_request_duration_seconds",
				Help:    "API request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		networkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opencircle_client_network_errors_total",
			Help: "Requests that never produced an HTTP response.",
		}),
	}
	reg.MustRegister(m.inFlight, m.requestsTotal, m.requestDuration, m.networkErrors)
	return m
}

// Begin marks a request as started and returns a done callback taking the
// final HTTP status, or 0 when the request never reached the server.
func (m *Metrics) Begin(method string) func(status int) {
	if m == nil {
		return func(int) {}
	}
	m.inFlight.Inc()
	start := time.Now()

	return func(status int) {
		m.inFlight.Dec()
		if status == 0 {
			m.networkErrors.Inc()
			return
		}
		code := strconv.Itoa(status)
		m.requestsTotal.WithLabelValues(method, code).Inc()
		m.requestDuration.WithLabelValues(method, code).Observe(time.Since(start).Seconds())
	}
}
