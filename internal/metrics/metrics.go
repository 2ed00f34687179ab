// Package metrics exposes Prometheus collectors for the HTTP surface and the
// saved-property workflow. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

const namespace = "homescout"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	toggles         *prometheus.CounterVec
	toggleRejected  prometheus.Counter
	savedProperties prometheus.Gauge
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_toggles_total",
			Help:      "Completed saved-property toggles by resulting action.",
		}, []string{"action"}),
		toggleRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_toggles_rejected_total",
			Help:      "Toggles rejected because one for the same property was in flight.",
		}),
		savedProperties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "saved_properties",
			Help:      "Number of properties currently saved.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.toggles,
		m.toggleRejected,
		m.savedProperties,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. route should be the
// matched route pattern, not the raw path, to keep cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordToggle counts a completed toggle.
func (m *Metrics) RecordToggle(action models.ToggleAction) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(string(action)).Inc()
}

// RecordToggleRejected counts a toggle refused by the in-flight guard.
func (m *Metrics) RecordToggleRejected() {
	if m == nil {
		return
	}
	m.toggleRejected.Inc()
}

// SetSavedCount publishes the size of the saved set.
func (m *Metrics) SetSavedCount(n int) {
	if m == nil {
		return
	}
	m.savedProperties.Set(float64(n))
}
