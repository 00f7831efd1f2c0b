// Package metrics defines the Prometheus metric collectors used across the
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the sync service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SyncEventsTotal      *prometheus.CounterVec
	EnrichmentTotal      *prometheus.CounterVec
	EnrichmentLatency    prometheus.Histogram
	EngineOpsTotal       *prometheus.CounterVec
	RebuildDocsTotal     *prometheus.CounterVec
	SearchRequestsTotal  *prometheus.CounterVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	IndexedDocuments     prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SyncEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_events_total",
				Help: "Lifecycle sync actions by trigger, action (upsert, remove, none), and outcome.",
			},
			[]string{"trigger", "action", "outcome"},
		),
		EnrichmentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichment_requests_total",
				Help: "Enrichment service calls by status (ok, error, skipped).",
			},
			[]string{"status"},
		),
		EnrichmentLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "enrichment_request_duration_seconds",
				Help:    "Enrichment service call latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		EngineOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_operations_total",
				Help: "Search engine operations by op (upsert, remove, clear, rebuild, search, settings) and status.",
			},
			[]string{"op", "status"},
		),
		RebuildDocsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rebuild_documents_total",
				Help: "Documents processed by bulk rebuild, by status (indexed, skipped).",
			},
			[]string{"status"},
		),
		SearchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_requests_total",
				Help: "Advanced-search passthrough requests by cache status (hit, miss, error).",
			},
			[]string{"cache_status"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		IndexedDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexed_documents",
				Help: "Number of documents currently held by the search index.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SyncEventsTotal,
		m.EnrichmentTotal,
		m.EnrichmentLatency,
		m.EngineOpsTotal,
		m.RebuildDocsTotal,
		m.SearchRequestsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.IndexedDocuments,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
