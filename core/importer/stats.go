package importer

import "sync/atomic"

// Stats aggregates import counters for observability. Fields are updated
// atomically; Snapshot returns a plain copy for reporting.
type Stats struct {
	documentsProcessed atomic.Int64
	documentsFailed    atomic.Int64
	linesEmitted       atomic.Int64
	skippedSubtrees    atomic.Int64
	linksCreated       atomic.Int64
	linksDropped       atomic.Int64
	altNodesBuilt      atomic.Int64
	altNodesDropped    atomic.Int64
}

// StatsSnapshot is an immutable copy of the counters.
type StatsSnapshot struct {
	DocumentsProcessed int64 `json:"documents_processed"`
	DocumentsFailed    int64 `json:"documents_failed"`
	LinesEmitted       int64 `json:"lines_emitted"`
	SkippedSubtrees    int64 `json:"skipped_subtrees"`
	LinksCreated       int64 `json:"links_created"`
	LinksDropped       int64 `json:"links_dropped"`
	AltNodesBuilt      int64 `json:"alt_nodes_built"`
	AltNodesDropped    int64 `json:"alt_nodes_dropped"`
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		DocumentsProcessed: s.documentsProcessed.Load(),
		DocumentsFailed:    s.documentsFailed.Load(),
		LinesEmitted:       s.linesEmitted.Load(),
		SkippedSubtrees:    s.skippedSubtrees.Load(),
		LinksCreated:       s.linksCreated.Load(),
		LinksDropped:       s.linksDropped.Load(),
		AltNodesBuilt:      s.altNodesBuilt.Load(),
		AltNodesDropped:    s.altNodesDropped.Load(),
	}
}
