// Package metrics provides Prometheus metrics for the similarity engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for songsim.
type Metrics struct {
	Registry *prometheus.Registry

	// Engine metrics
	PairsComputedTotal prometheus.Counter
	PairsSkippedTotal  prometheus.Counter
	PassesTotal        prometheus.Counter
	RestartsTotal      prometheus.Counter
	PassDuration       prometheus.Histogram
	DocumentsTotal     prometheus.Gauge
	CachedPairsTotal   prometheus.Gauge
	EngineRunning      prometheus.Gauge

	// Loader metrics
	DocumentsLoadedTotal *prometheus.CounterVec
}

// New creates all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PairsComputedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "songsim_pairs_computed_total",
			Help: "Total number of document pairs scored",
		}),
		PairsSkippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "songsim_pairs_skipped_total",
			Help: "Total number of document pairs skipped because they were already scored",
		}),
		PassesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "songsim_passes_total",
			Help: "Total number of comparison passes run",
		}),
		RestartsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "songsim_pass_restarts_total",
			Help: "Total number of passes restarted because documents arrived while running",
		}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "songsim_pass_duration_seconds",
			Help:    "Duration of a single comparison pass in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		DocumentsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "songsim_documents",
			Help: "Number of documents in the working set",
		}),
		CachedPairsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "songsim_cached_pairs",
			Help: "Number of scored pairs in the cache",
		}),
		EngineRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "songsim_engine_running",
			Help: "1 while a comparison pass is running",
		}),
		DocumentsLoadedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "songsim_documents_loaded_total",
			Help: "Total number of song files read, by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
