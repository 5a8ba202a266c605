package metrics

import "log/slog"

// LogSink writes one structured summary line per scope. Useful on its own
// in development and alongside PrometheusSink in production.
type LogSink struct {
	Log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{Log: log}
}

func (s *LogSink) ReportRouteMetrics(routeID string, m *MatchMetrics) {
	s.report("route", routeID, m)
}

func (s *LogSink) ReportFeedMetrics(feedID string, m *MatchMetrics) {
	s.report("feed", feedID, m)
}

func (s *LogSink) report(scope, id string, m *MatchMetrics) {
	s.Log.Info("match metrics",
		slog.String(scope, id),
		slog.Int("matched", m.Matched),
		slog.Int("added", m.Added),
		slog.Int("duplicates", m.Duplicates),
		slog.Int("strict", m.StrictMatch),
		slog.Int("loose", m.LooseMatchSameDay),
		slog.Int("coerced", m.LooseMatchCoercion),
		slog.Int("other_day", m.LooseMatchOtherDay),
		slog.Int("merged", m.MergedCount),
		slog.Int("no_match", m.NoMatch),
		slog.Int("no_trip_with_start_date", m.NoTripWithStartDate),
		slog.Int("bad_id", m.BadID),
		slog.Int64("latency_sec", m.Latency),
	)
}
