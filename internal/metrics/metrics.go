// Package metrics defines the Prometheus metric collectors for the import
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otzarlib/otzar/core/importer"
)

// Metrics holds all Prometheus collectors for the importer.
type Metrics struct {
	DocumentsTotal    *prometheus.CounterVec
	LinesEmittedTotal prometheus.Counter
	SkippedSubtrees   prometheus.Counter
	LinksTotal        *prometheus.CounterVec
	AltNodesTotal     *prometheus.CounterVec
	ImportDuration    prometheus.Histogram
}

// New creates and registers all collectors with the given registerer. Pass
// prometheus.DefaultRegisterer outside of tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otzar_documents_total",
				Help: "Documents seen by the importer, by outcome (processed, failed).",
			},
			[]string{"outcome"},
		),
		LinesEmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "otzar_lines_emitted_total",
				Help: "Total lines emitted by flattening.",
			},
		),
		SkippedSubtrees: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "otzar_skipped_subtrees_total",
				Help: "Schema/content shape disagreements skipped during flattening.",
			},
		),
		LinksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otzar_links_total",
				Help: "Link records by outcome (created, dropped).",
			},
			[]string{"outcome"},
		),
		AltNodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otzar_alt_nodes_total",
				Help: "Alternate-structure nodes by outcome (built, dropped).",
			},
			[]string{"outcome"},
		),
		ImportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "otzar_import_duration_seconds",
				Help:    "Wall-clock duration of a full import run.",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
	}

	reg.MustRegister(
		m.DocumentsTotal,
		m.LinesEmittedTotal,
		m.SkippedSubtrees,
		m.LinksTotal,
		m.AltNodesTotal,
		m.ImportDuration,
	)

	return m
}

// Record transfers an import run's counters into the collectors.
func (m *Metrics) Record(stats importer.StatsSnapshot, seconds float64) {
	m.DocumentsTotal.WithLabelValues("processed").Add(float64(stats.DocumentsProcessed))
	m.DocumentsTotal.WithLabelValues("failed").Add(float64(stats.DocumentsFailed))
	m.LinesEmittedTotal.Add(float64(stats.LinesEmitted))
	m.SkippedSubtrees.Add(float64(stats.SkippedSubtrees))
	m.LinksTotal.WithLabelValues("created").Add(float64(stats.LinksCreated))
	m.LinksTotal.WithLabelValues("dropped").Add(float64(stats.LinksDropped))
	m.AltNodesTotal.WithLabelValues("built").Add(float64(stats.AltNodesBuilt))
	m.AltNodesTotal.WithLabelValues("dropped").Add(float64(stats.AltNodesDropped))
	m.ImportDuration.Observe(seconds)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
