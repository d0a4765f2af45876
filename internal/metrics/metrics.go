// Package metrics collects and exposes Prometheus metrics for the REST and gRPC surfaces.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "userprofile"

// Transport labels.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Recorder is the interface used by middleware and interceptors.
type Recorder interface {
	RecordRequest(transport, operation, code string, duration time.Duration)
	RecordRateLimited(transport string)
}

// Collector records request metrics into a Prometheus registry.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	rateLimited *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Handled requests by transport, operation and result code.",
		}, []string{"transport", "operation", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "operation"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"transport"}),
	}

	reg.MustRegister(c.requests, c.latency, c.rateLimited)
	return c
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RecordRequest counts a finished request and observes its latency.
func (c *Collector) RecordRequest(transport, operation, code string, duration time.Duration) {
	c.requests.WithLabelValues(transport, operation, code).Inc()
	c.latency.WithLabelValues(transport, operation).Observe(duration.Seconds())
}

// RecordRateLimited counts a request rejected by the rate limiter.
func (c *Collector) RecordRateLimited(transport string) {
	c.rateLimited.WithLabelValues(transport).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
