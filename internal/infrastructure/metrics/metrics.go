package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	FetchErrors     prometheus.Counter
	GroupItems      *prometheus.GaugeVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refresh_cycles_total",
				Help: "Total number of refresh cycles by outcome",
			},
			[]string{"status"},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "refresh_cycle_duration_seconds",
				Help:    "Refresh cycle duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		FetchErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fetch_errors_total",
				Help: "Total number of upstream fetch failures",
			},
		),
		GroupItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "view_items",
				Help: "Number of items in each view after the last refresh",
			},
			[]string{"view"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	m.Registry.MustRegister(
		m.RefreshTotal,
		m.RefreshDuration,
		m.FetchErrors,
		m.GroupItems,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
