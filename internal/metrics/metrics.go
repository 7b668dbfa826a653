// Package metrics provides Prometheus metric collection and exposure for
// Greenhouse Core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector interface used by the API layer and the ingestor. Keeping it
// an interface lets tests pass a no-op.
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordSetpointPublish(ok bool)
	RecordIngestMessage(channel, result string)
}

// Ingest result labels.
const (
	IngestStored    = "stored"
	IngestDuplicate = "duplicate"
	IngestRejected  = "rejected"
	IngestFailed    = "failed"
)

// Collector collects Prometheus metrics.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	setpointPublish *prometheus.CounterVec
	ingestMessages  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenhouse_http_requests_total",
			Help: "HTTP requests handled, by method, route, and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greenhouse_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		setpointPublish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenhouse_setpoint_publish_total",
			Help: "Setpoint MQTT publish attempts, by outcome.",
		}, []string{"outcome"}),
		ingestMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenhouse_ingest_messages_total",
			Help: "MQTT messages processed by the ingestor, by channel and result.",
		}, []string{"channel", "result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.setpointPublish,
		c.ingestMessages,
	)

	return c
}

// RecordHTTPRequest records one handled HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSetpointPublish records one setpoint publish attempt.
func (c *Collector) RecordSetpointPublish(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	c.setpointPublish.WithLabelValues(outcome).Inc()
}

// RecordIngestMessage records one processed ingest message.
func (c *Collector) RecordIngestMessage(channel, result string) {
	c.ingestMessages.WithLabelValues(channel, result).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop is a MetricsCollector that records nothing. Tests use it so
// handlers never need a real registry.
type Noop struct{}

func (Noop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Noop) RecordSetpointPublish(bool)                           {}
func (Noop) RecordIngestMessage(string, string)                   {}
