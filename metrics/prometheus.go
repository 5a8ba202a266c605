package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exposes match quality counters as gauges labeled by scope
// (route or feed) and scope id. Gauges rather than counters because each
// reconciliation pass reports absolute counts for that pass.
type PrometheusSink struct {
	Registry *prometheus.Registry

	matched    *prometheus.GaugeVec
	added      *prometheus.GaugeVec
	duplicates *prometheus.GaugeVec
	byStatus   *prometheus.GaugeVec
	latency    *prometheus.GaugeVec
}

// NewPrometheusSink creates and registers the sink's metrics with a new
// registry.
func NewPrometheusSink() *PrometheusSink {
	registry := prometheus.NewRegistry()

	matched := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "railproxy_trips_matched",
			Help: "Trip updates matched to a static trip in the last pass",
		},
		[]string{"scope", "id"},
	)
	added := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "railproxy_trips_added",
			Help: "Trip updates published as ADDED in the last pass",
		},
		[]string{"scope", "id"},
	)
	duplicates := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "railproxy_trips_duplicates",
			Help: "Trip updates sharing an already-seen trip id in the last pass",
		},
		[]string{"scope", "id"},
	)
	byStatus := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "railproxy_match_status",
			Help: "Trip updates by match status in the last pass",
		},
		[]string{"scope", "id", "status"},
	)
	latency := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "railproxy_feed_latency_seconds",
			Help: "Seconds between the feed header timestamp and the wall clock",
		},
		[]string{"scope", "id"},
	)

	registry.MustRegister(matched, added, duplicates, byStatus, latency)

	return &PrometheusSink{
		Registry:   registry,
		matched:    matched,
		added:      added,
		duplicates: duplicates,
		byStatus:   byStatus,
		latency:    latency,
	}
}

func (s *PrometheusSink) ReportRouteMetrics(routeID string, m *MatchMetrics) {
	s.report("route", routeID, m)
}

func (s *PrometheusSink) ReportFeedMetrics(feedID string, m *MatchMetrics) {
	s.report("feed", feedID, m)
}

func (s *PrometheusSink) report(scope, id string, m *MatchMetrics) {
	s.matched.WithLabelValues(scope, id).Set(float64(m.Matched))
	s.added.WithLabelValues(scope, id).Set(float64(m.Added))
	s.duplicates.WithLabelValues(scope, id).Set(float64(m.Duplicates))
	s.byStatus.WithLabelValues(scope, id, "strict_match").Set(float64(m.StrictMatch))
	s.byStatus.WithLabelValues(scope, id, "loose_match").Set(float64(m.LooseMatchSameDay))
	s.byStatus.WithLabelValues(scope, id, "loose_match_coerced").Set(float64(m.LooseMatchCoercion))
	s.byStatus.WithLabelValues(scope, id, "loose_match_other_day").Set(float64(m.LooseMatchOtherDay))
	s.byStatus.WithLabelValues(scope, id, "merged").Set(float64(m.MergedCount))
	s.byStatus.WithLabelValues(scope, id, "no_match").Set(float64(m.NoMatch))
	s.byStatus.WithLabelValues(scope, id, "no_trip_with_start_date").Set(float64(m.NoTripWithStartDate))
	s.byStatus.WithLabelValues(scope, id, "bad_trip_id").Set(float64(m.BadID))
	if m.Latency >= 0 {
		s.latency.WithLabelValues(scope, id).Set(float64(m.Latency))
	}
}
