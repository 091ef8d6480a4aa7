package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the miner's counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	CacheLookups    *prometheus.CounterVec
	ListingFetches  *prometheus.CounterVec
	DetailFetches   *prometheus.CounterVec
	StoreWrites     *prometheus.CounterVec
	InsightRequests *prometheus.CounterVec
	ExportUploads   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_cache_lookups_total",
			Help: "Product cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		ListingFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_listing_fetches_total",
			Help: "Search listing page fetches by outcome.",
		}, []string{"outcome"}),
		DetailFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_detail_fetches_total",
			Help: "Product detail page fetches by outcome.",
		}, []string{"outcome"}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_store_writes_total",
			Help: "Product cache writes by outcome (ok, skipped, error).",
		}, []string{"outcome"}),
		InsightRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_insight_requests_total",
			Help: "Insight requests by outcome.",
		}, []string{"outcome"}),
		ExportUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_export_uploads_total",
			Help: "Spreadsheet exports by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CacheLookups,
		m.ListingFetches,
		m.DetailFetches,
		m.StoreWrites,
		m.InsightRequests,
		m.ExportUploads,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ListingFetch(outcome string) {
	if m == nil {
		return
	}
	m.ListingFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DetailFetch(outcome string) {
	if m == nil {
		return
	}
	m.DetailFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StoreWrite(outcome string) {
	if m == nil {
		return
	}
	m.StoreWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) InsightRequest(outcome string) {
	if m == nil {
		return
	}
	m.InsightRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ExportUpload(outcome string) {
	if m == nil {
		return
	}
	m.ExportUploads.WithLabelValues(outcome).Inc()
}
