// Package metrics accumulates per-route and per-feed match quality counters
// and publishes them through pluggable sinks.
package metrics

import (
	"github.com/transitforge/railproxy/match"
)

// MatchMetrics counts match outcomes for one scope (a route or a whole
// feed) over one reconciliation pass. Latency is -1 until reported.
type MatchMetrics struct {
	Matched             int
	Added               int
	Duplicates          int
	MergedCount         int
	StrictMatch         int
	LooseMatchSameDay   int
	LooseMatchCoercion  int
	LooseMatchOtherDay  int
	NoMatch             int
	NoTripWithStartDate int
	BadID               int
	Latency             int64

	seen map[string]bool
}

// NewMatchMetrics returns a fresh accumulator with no latency reading.
func NewMatchMetrics() *MatchMetrics {
	return &MatchMetrics{Latency: -1, seen: make(map[string]bool)}
}

// Add records one match result. A matched static trip id seen more than
// once in this pass also bumps the duplicate counter.
func (m *MatchMetrics) Add(r *match.Result) {
	if r.HasTrip() {
		id := r.Trip.Trip.ID
		if m.seen[id] {
			m.Duplicates++
		}
		m.seen[id] = true
	}

	switch r.Status {
	case match.StatusStrictMatch:
		m.Matched++
		m.StrictMatch++
	case match.StatusLooseMatch:
		m.Matched++
		m.LooseMatchSameDay++
	case match.StatusLooseMatchCoerced:
		m.Matched++
		m.LooseMatchCoercion++
	case match.StatusLooseMatchOtherDay:
		m.Matched++
		m.LooseMatchOtherDay++
	case match.StatusMerged:
		m.Matched++
		m.MergedCount++
	case match.StatusNoMatch:
		m.Added++
		m.NoMatch++
	case match.StatusNoTripWithStartDate:
		m.Added++
		m.NoTripWithStartDate++
	case match.StatusBadTripID:
		m.Added++
		m.BadID++
	}
}

// ReportLatency records how far behind the wall clock the feed header
// timestamp is, in seconds.
func (m *MatchMetrics) ReportLatency(headerTimestamp, now int64) {
	m.Latency = now - headerTimestamp
}

// Merge folds other's counters into m. Latency takes the larger of the two
// readings so a feed-level rollup reflects its stalest route. Duplicate
// detection stays per-scope; seen sets are not merged.
func (m *MatchMetrics) Merge(other *MatchMetrics) {
	m.Matched += other.Matched
	m.Added += other.Added
	m.Duplicates += other.Duplicates
	m.MergedCount += other.MergedCount
	m.StrictMatch += other.StrictMatch
	m.LooseMatchSameDay += other.LooseMatchSameDay
	m.LooseMatchCoercion += other.LooseMatchCoercion
	m.LooseMatchOtherDay += other.LooseMatchOtherDay
	m.NoMatch += other.NoMatch
	m.NoTripWithStartDate += other.NoTripWithStartDate
	m.BadID += other.BadID
	if other.Latency > m.Latency {
		m.Latency = other.Latency
	}
}

// Sink receives finished accumulators once per reconciliation pass.
// Implementations must not retain the metrics value past the call.
type Sink interface {
	ReportRouteMetrics(routeID string, m *MatchMetrics)
	ReportFeedMetrics(feedID string, m *MatchMetrics)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) ReportRouteMetrics(string, *MatchMetrics) {}
func (NopSink) ReportFeedMetrics(string, *MatchMetrics)  {}
