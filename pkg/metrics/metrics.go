// Package metrics defines the Prometheus metric collectors used by the ranker
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a ranking run.
type Metrics struct {
	FragmentsTotal *prometheus.CounterVec
	DocumentsTotal *prometheus.CounterVec
	WordsTotal     prometheus.Counter
	PhaseDuration  *prometheus.HistogramVec
	TasksInFlight  *prometheus.GaugeVec
	DocumentRank   prometheus.Histogram
	SinkWrites     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates all collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		FragmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrank_fragments_total",
				Help: "Fragments processed by map tasks, by status (ok, failed).",
			},
			[]string{"status"},
		),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrank_documents_total",
				Help: "Documents ranked, by result source (reduced, cached).",
			},
			[]string{"source"},
		),
		WordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docrank_words_total",
				Help: "Total words recovered by map tasks.",
			},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docrank_phase_duration_seconds",
				Help:    "Wall time of each scheduling phase in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"phase"},
		),
		TasksInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docrank_tasks_in_flight",
				Help: "Tasks currently running on the worker pool, by phase.",
			},
			[]string{"phase"},
		),
		DocumentRank: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docrank_document_rank",
				Help:    "Distribution of computed document ranks.",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
			},
		),
		SinkWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrank_sink_writes_total",
				Help: "Report sink writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FragmentsTotal,
		m.DocumentsTotal,
		m.WordsTotal,
		m.PhaseDuration,
		m.TasksInFlight,
		m.DocumentRank,
		m.SinkWrites,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
