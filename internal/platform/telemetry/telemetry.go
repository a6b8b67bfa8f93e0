// Package telemetry exposes Prometheus collectors for the inspector service.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	inspectionsTotal           *prometheus.CounterVec
	probesTotal                *prometheus.CounterVec
	probeDurationSeconds       prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		inspectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_inspections_total",
				Help: "Total number of page inspections, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		probesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_probes_total",
				Help: "Total number of resource probes, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		probeDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inspector_probe_duration_seconds",
				Help:    "Histogram of per-resource probe latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// ObserveInspection records one completed inspection. No-op before Init.
func ObserveInspection(outcome string) {
	if inspectionsTotal == nil {
		return
	}
	inspectionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveProbe records one terminal probe result. No-op before Init.
func ObserveProbe(outcome string, d time.Duration) {
	if probesTotal == nil {
		return
	}
	probesTotal.WithLabelValues(outcome).Inc()
	probeDurationSeconds.Observe(d.Seconds())
}

// ObserveHTTPRequest records one served HTTP request. No-op before Init.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
