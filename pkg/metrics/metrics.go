// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the lead/job registries.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scentaustralia/leadgen/pkg/jobs"
	"github.com/scentaustralia/leadgen/pkg/store"
)

// Metrics bundles the registry and HTTP collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a registry with HTTP collectors plus gauges reading the lead
// store and job orchestrator on every scrape.
func New(st *store.Service, orchestrator *jobs.Service) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadgen_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration)
	registry.MustRegister(&stateCollector{store: st, orchestrator: orchestrator})

	return m
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			m.requestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

var (
	leadsTotalDesc = prometheus.NewDesc(
		"leadgen_leads_total", "Leads currently in the store.", nil, nil)
	leadsScoredDesc = prometheus.NewDesc(
		"leadgen_leads_scored_total", "Leads that have been scored.", nil, nil)
	leadsByPriorityDesc = prometheus.NewDesc(
		"leadgen_leads_by_priority", "Leads by priority tier.", []string{"priority"}, nil)
	jobsByStateDesc = prometheus.NewDesc(
		"leadgen_jobs_by_state", "Known jobs by state.", []string{"state"}, nil)
	jobsLeadsFoundDesc = prometheus.NewDesc(
		"leadgen_jobs_leads_found_total", "Leads found across all jobs.", nil, nil)
)

// stateCollector snapshots the registries at scrape time instead of
// threading counters through every service.
type stateCollector struct {
	store        *store.Service
	orchestrator *jobs.Service
}

func (sc *stateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- leadsTotalDesc
	ch <- leadsScoredDesc
	ch <- leadsByPriorityDesc
	ch <- jobsByStateDesc
	ch <- jobsLeadsFoundDesc
}

func (sc *stateCollector) Collect(ch chan<- prometheus.Metric) {
	leadStats := sc.store.Stats()
	ch <- prometheus.MustNewConstMetric(leadsTotalDesc, prometheus.GaugeValue, float64(leadStats.Total))
	ch <- prometheus.MustNewConstMetric(leadsScoredDesc, prometheus.GaugeValue, float64(leadStats.ScoredCount))
	for priority, n := range leadStats.ByPriority {
		ch <- prometheus.MustNewConstMetric(leadsByPriorityDesc, prometheus.GaugeValue, float64(n), priority)
	}

	jobStats := sc.orchestrator.Stats()
	for state, n := range jobStats.ByState {
		ch <- prometheus.MustNewConstMetric(jobsByStateDesc, prometheus.GaugeValue, float64(n), state)
	}
	ch <- prometheus.MustNewConstMetric(jobsLeadsFoundDesc, prometheus.GaugeValue, float64(jobStats.TotalLeadsFound))
}
