// Package metrics exposes service counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "callmood"

// Metrics holds every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	TransformsTotal   *prometheus.CounterVec
	SegmentsIngested  prometheus.Counter
	TransformDuration prometheus.Histogram
	AnalysisJobs      *prometheus.CounterVec
	DashboardCache    *prometheus.CounterVec
	InferenceRequests *prometheus.CounterVec
	WebhooksTotal     *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry. Each call is independent
// so tests can build as many as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TransformsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Dashboard transforms run, by outcome.",
		}, []string{"outcome"}),
		SegmentsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_ingested_total",
			Help:      "Prosody segments turned into chart points.",
		}),
		TransformDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Time spent building a dashboard bundle.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		AnalysisJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_jobs_total",
			Help:      "Background analysis jobs, by final status.",
		}, []string{"status"}),
		DashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_requests_total",
			Help:      "Dashboard cache lookups, by result.",
		}, []string{"result"}),
		InferenceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_requests_total",
			Help:      "Requests to the inference backend, by operation and status class.",
		}, []string{"op", "code"}),
		WebhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Call webhooks received, by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TransformsTotal,
		m.SegmentsIngested,
		m.TransformDuration,
		m.AnalysisJobs,
		m.DashboardCache,
		m.InferenceRequests,
		m.WebhooksTotal,
		m.HTTPRequests,
	)
	return m
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTransform records one transform run.
func (m *Metrics) ObserveTransform(outcome string, segments int, took time.Duration) {
	if m == nil {
		return
	}
	m.TransformsTotal.WithLabelValues(outcome).Inc()
	m.SegmentsIngested.Add(float64(segments))
	m.TransformDuration.Observe(took.Seconds())
}

// CacheResult records a dashboard cache hit or miss.
func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.DashboardCache.WithLabelValues("hit").Inc()
		return
	}
	m.DashboardCache.WithLabelValues("miss").Inc()
}

// JobFinished records the final status of an analysis job.
func (m *Metrics) JobFinished(status string) {
	if m == nil {
		return
	}
	m.AnalysisJobs.WithLabelValues(status).Inc()
}

// InferenceRequest records one backend call.
func (m *Metrics) InferenceRequest(op, code string) {
	if m == nil {
		return
	}
	m.InferenceRequests.WithLabelValues(op, code).Inc()
}

// Webhook records a received webhook.
func (m *Metrics) Webhook(result string) {
	if m == nil {
		return
	}
	m.WebhooksTotal.WithLabelValues(result).Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
