package reconcile

// FeedRules is the per-feed report cleanup table: routes whose reports are
// ignored outright and realtime route ids that map to a different id in
// the static schedule.
type FeedRules struct {
	RouteBlacklist map[string]bool
	RouteRemap     map[string]string
}

func (r FeedRules) remap(routeID string) string {
	if mapped, ok := r.RouteRemap[routeID]; ok {
		return mapped
	}
	return routeID
}

// Options configures a Reconciler. Built once at startup and treated as
// read-only thereafter.
type Options struct {
	// LatencyLimitSec discards a whole feed when its header timestamp lags
	// the wall clock by more than this many seconds. Zero or negative
	// disables the guard.
	LatencyLimitSec int

	// RoutesNeedingFixup lists routes whose reports carry a malformed
	// start date and stop ids missing the direction suffix.
	RoutesNeedingFixup map[string]bool

	// RulesByFeed keys cleanup rules by feed id. A feed with no entry gets
	// zero-value rules.
	RulesByFeed map[string]FeedRules
}

func (o Options) rules(feedID string) FeedRules {
	return o.RulesByFeed[feedID]
}
