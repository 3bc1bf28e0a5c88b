// Package observability holds the Prometheus metrics for the compliance
// pipeline and the HTTP API.
package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	checksTotal        *prometheus.CounterVec
	checkDuration      prometheus.Histogram
	checkIssues        prometheus.Histogram
	aiFallbacksTotal   prometheus.Counter
	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	queueDepth         prometheus.Gauge
}

// NewMetrics registers every metric on reg. Pass prometheus.NewRegistry() in
// tests; the daemon adds Go and process collectors to its registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "permit_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),

		checksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permit_compliance_checks_total",
				Help: "Compliance checks by outcome (compliant, non_compliant, not_found, no_text, error)",
			},
			[]string{"outcome"},
		),
		checkDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "permit_compliance_check_duration_seconds",
				Help:    "End-to-end compliance check latency",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		checkIssues: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "permit_compliance_issues",
				Help:    "Number of issues reported per check",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
		aiFallbacksTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "permit_ai_fallbacks_total",
				Help: "Checks where the AI pass failed and the fallback notice was used",
			},
		),
		extractionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permit_extractions_total",
				Help: "Text extractions by method and result",
			},
			[]string{"method", "result"},
		),
		extractionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "permit_extraction_duration_seconds",
				Help:    "Text extraction latency in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method"},
		),
		queueDepth: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "permit_check_queue_depth",
				Help: "Background compliance checks waiting for a worker",
			},
		),
	}
}

func (m *Metrics) RecordCheck(outcome string, issues int, d time.Duration) {
	if m == nil {
		return
	}
	m.checksTotal.WithLabelValues(outcome).Inc()
	m.checkDuration.Observe(d.Seconds())
	if outcome == "compliant" || outcome == "non_compliant" {
		m.checkIssues.Observe(float64(issues))
	}
}

func (m *Metrics) RecordAIFallback() {
	if m == nil {
		return
	}
	m.aiFallbacksTotal.Inc()
}

func (m *Metrics) RecordExtraction(method string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	if method == "" {
		method = "none"
	}
	m.extractionsTotal.WithLabelValues(method, result).Inc()
	m.extractionDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Middleware records request count and latency by route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		if err := c.Next(); err != nil {
			// render the error now so the recorded status is the final one
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		path := c.Route().Path
		m.httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return adaptor.HTTPHandler(promhttp.Handler())
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
