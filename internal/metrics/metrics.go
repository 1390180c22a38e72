package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors del servicio sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SubmissionsTotal      *prometheus.CounterVec
	PersistFailuresTotal  prometheus.Counter
	ActivityFailuresTotal prometheus.Counter
	ReportsRenderedTotal  *prometheus.CounterVec
	TopMatchPercentage    prometheus.Histogram
	TierCacheLookupsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"route", "method"},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "career_test_submissions_total",
				Help: "Career fit test submissions by tier and outcome",
			},
			[]string{"tier", "outcome"},
		),
		PersistFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "career_test_persist_failures_total",
				Help: "Submissions whose result could not be stored",
			},
		),
		ActivityFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "user_activity_failures_total",
				Help: "User activity rows that could not be stored",
			},
		),
		ReportsRenderedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "career_test_reports_total",
				Help: "Downloadable reports by outcome",
			},
			[]string{"outcome"},
		),
		TopMatchPercentage: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "career_test_top_match_percentage",
				Help:    "Distribution of the best match percentage per submission",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		TierCacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tier_cache_lookups_total",
				Help: "Tier cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SubmissionsTotal,
		m.PersistFailuresTotal,
		m.ActivityFailuresTotal,
		m.ReportsRenderedTotal,
		m.TopMatchPercentage,
		m.TierCacheLookupsTotal,
	)
	return m
}

// Registry expone el registry para tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
