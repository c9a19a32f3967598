package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/otzarlib/otzar/core/importer"
)

func TestRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Record(importer.StatsSnapshot{
		DocumentsProcessed: 40,
		DocumentsFailed:    2,
		LinesEmitted:       55000,
		SkippedSubtrees:    3,
		LinksCreated:       9000,
		LinksDropped:       17,
		AltNodesBuilt:      120,
		AltNodesDropped:    5,
	}, 12.5)

	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("processed")); got != 40 {
		t.Errorf("Expected 40 processed documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("failed")); got != 2 {
		t.Errorf("Expected 2 failed documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.LinesEmittedTotal); got != 55000 {
		t.Errorf("Expected 55000 lines, got %v", got)
	}
	if got := testutil.ToFloat64(m.LinksTotal.WithLabelValues("dropped")); got != 17 {
		t.Errorf("Expected 17 dropped links, got %v", got)
	}
	if got := testutil.ToFloat64(m.AltNodesTotal.WithLabelValues("built")); got != 120 {
		t.Errorf("Expected 120 built alt nodes, got %v", got)
	}
}

func TestRecordAccumulates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	snap := importer.StatsSnapshot{LinesEmitted: 10}
	m.Record(snap, 1)
	m.Record(snap, 1)

	if got := testutil.ToFloat64(m.LinesEmittedTotal); got != 20 {
		t.Errorf("Expected counters to accumulate to 20, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	if Handler() == nil {
		t.Error("Expected non-nil scrape handler")
	}
}
