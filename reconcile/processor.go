package reconcile

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	rt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/gtfsrt"
	"github.com/transitforge/railproxy/internal/clock"
	"github.com/transitforge/railproxy/match"
	"github.com/transitforge/railproxy/metrics"
	"github.com/transitforge/railproxy/trip"
)

// A trip update whose latest stop event is more than this many seconds
// before the feed header timestamp is dropped as expired.
const expiryLimitSec = 300

// Reconciler reconciles one feed's trip updates against the static
// schedule. It is single-threaded per feed; distinct feeds may each use
// their own Reconciler concurrently.
type Reconciler struct {
	matcher match.Matcher
	tz      *time.Location
	opts    Options
	sink    metrics.Sink
	clock   clock.Clock
	log     *slog.Logger
}

func New(matcher match.Matcher, tz *time.Location, opts Options, sink metrics.Sink, clk clock.Clock, log *slog.Logger) *Reconciler {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{matcher: matcher, tz: tz, opts: opts, sink: sink, clock: clk, log: log}
}

// ProcessFeed runs one reconciliation pass and returns the canonical trip
// updates. Input entities are never mutated; every returned update is a
// fresh message.
func (r *Reconciler) ProcessFeed(feedID string, msg *rt.FeedMessage) []*rt.TripUpdate {
	timestamp := int64(msg.GetHeader().GetTimestamp())
	feedMetrics := metrics.NewMatchMetrics()
	feedMetrics.ReportLatency(timestamp, r.clock.Now().Unix())

	if r.opts.LatencyLimitSec > 0 && feedMetrics.Latency > int64(r.opts.LatencyLimitSec) {
		r.log.Warn("discarding stale feed",
			slog.String("feed", feedID),
			slog.Int64("latency_sec", feedMetrics.Latency),
			slog.Int("limit_sec", r.opts.LatencyLimitSec))
		r.reportFeed(feedID, feedMetrics)
		return nil
	}

	rules := r.opts.rules(feedID)

	expired := 0
	byRoute := make(map[string][]*rt.TripUpdate)
	for _, tu := range gtfsrt.TripUpdates(msg) {
		if isExpired(tu, timestamp) {
			expired++
			continue
		}
		routeID := rules.remap(tu.GetTrip().GetRouteId())
		byRoute[routeID] = append(byRoute[routeID], tu)
	}

	var out []*rt.TripUpdate
	for _, trp := range gtfsrt.ReplacementPeriods(msg.GetHeader()) {
		if rules.RouteBlacklist[trp.GetRouteId()] {
			continue
		}
		window := r.resolveWindow(trp, rules, timestamp, byRoute)
		r.matcher.InitForWindow(window)

		routeIDs := make([]string, 0, len(window.RouteIDs))
		for id := range window.RouteIDs {
			routeIDs = append(routeIDs, id)
		}
		sort.Strings(routeIDs)

		for _, routeID := range routeIDs {
			routeMetrics := metrics.NewMatchMetrics()
			results := r.matchRoute(routeID, byRoute[routeID], rules, timestamp)
			mergeGroups(results, r.log)

			for _, group := range results.inOrder() {
				for _, result := range group {
					if result.Status != match.StatusMerged {
						out = append(out, r.finish(result))
					}
					routeMetrics.Add(result)
					feedMetrics.Add(result)
				}
			}
			r.reportRoute(routeID, routeMetrics)
		}
	}

	r.reportFeed(feedID, feedMetrics)
	r.log.Info("feed reconciled",
		slog.String("feed", feedID),
		slog.Int("updates", len(out)),
		slog.Int("expired", expired))
	return out
}

// resolveWindow turns a trip replacement period into a concrete window.
// Missing bounds fall back to the earliest live trip start and the feed
// timestamp respectively.
func (r *Reconciler) resolveWindow(trp *rt.TripReplacementPeriod, rules FeedRules, timestamp int64, byRoute map[string][]*rt.TripUpdate) match.Window {
	routeIDs := make(map[string]bool)
	for _, id := range strings.Split(trp.GetRouteId(), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			routeIDs[rules.remap(id)] = true
		}
	}

	rng := trp.GetReplacementPeriod()
	var start time.Time
	if rng != nil && rng.Start != nil {
		start = time.Unix(int64(rng.GetStart()), 0)
	} else {
		start = r.earliestTripStart(routeIDs, byRoute, timestamp)
	}
	var end time.Time
	if rng != nil && rng.End != nil {
		end = time.Unix(int64(rng.GetEnd()), 0)
	} else {
		end = time.Unix(timestamp, 0)
	}
	return match.Window{Start: start, End: end, RouteIDs: routeIDs}
}

// earliestTripStart scans the window's reports for the smallest resolvable
// trip start time. Reports with unparseable identities or start dates are
// skipped; if nothing resolves, the feed timestamp is used.
func (r *Reconciler) earliestTripStart(routeIDs map[string]bool, byRoute map[string][]*rt.TripUpdate, timestamp int64) time.Time {
	var earliest int64
	for routeID, updates := range byRoute {
		if !routeIDs[routeID] {
			continue
		}
		for _, tu := range updates {
			start, ok := tripUpdateStart(tu, r.tz)
			if ok && (earliest == 0 || start < earliest) {
				earliest = start
			}
		}
	}
	if earliest == 0 {
		earliest = timestamp
	}
	return time.Unix(earliest, 0)
}

func tripUpdateStart(tu *rt.TripUpdate, tz *time.Location) (int64, bool) {
	td := tu.GetTrip()
	id, ok := trip.Parse(td.GetTripId())
	if !ok {
		return 0, false
	}
	startDate := td.GetStartDate()
	if len(startDate) > 8 {
		startDate = fixedStartDate(startDate)
	}
	sd, err := gtfs.ParseServiceDate(startDate)
	if err != nil {
		return 0, false
	}
	return sd.Midnight(tz).Unix() + int64(id.OriginDepartureSec()), true
}

// resultGroups buckets match results by resulting trip id, remembering
// first-seen key order so output order is stable.
type resultGroups struct {
	byTrip map[string][]*match.Result
	order  []string
}

func newResultGroups() *resultGroups {
	return &resultGroups{byTrip: make(map[string][]*match.Result)}
}

func (g *resultGroups) add(r *match.Result) {
	key := r.TripID()
	if _, ok := g.byTrip[key]; !ok {
		g.order = append(g.order, key)
	}
	g.byTrip[key] = append(g.byTrip[key], r)
}

func (g *resultGroups) inOrder() [][]*match.Result {
	out := make([][]*match.Result, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.byTrip[key])
	}
	return out
}

// matchRoute fixes up and matches every report on one route.
func (r *Reconciler) matchRoute(routeID string, updates []*rt.TripUpdate, rules FeedRules, timestamp int64) *resultGroups {
	groups := newResultGroups()
	for _, orig := range updates {
		tu := proto.Clone(orig).(*rt.TripUpdate)
		td := tu.GetTrip()
		if td == nil {
			td = &rt.TripDescriptor{}
			tu.Trip = td
		}
		td.RouteId = proto.String(rules.remap(td.GetRouteId()))

		id, parsed := trip.Parse(td.GetTripId())

		if r.opts.RoutesNeedingFixup[td.GetRouteId()] && parsed {
			td.StartDate = proto.String(fixedStartDate(td.GetStartDate()))
			for _, stu := range tu.GetStopTimeUpdate() {
				stu.StopId = proto.String(stu.GetStopId() + id.Direction)
			}
			td.TripId = proto.String(id.String())
		}

		groups.add(r.matcher.Match(tu, id, parsed, timestamp))
	}
	return groups
}

// finish applies the post-merge rewrite to one surviving result and
// returns the output update.
func (r *Reconciler) finish(result *match.Result) *rt.TripUpdate {
	if result.HasTrip() && !result.LastStopMatches() {
		r.log.Info("last stop mismatch",
			slog.String("rt", result.Update.GetTrip().GetTripId()),
			slog.String("static", result.Trip.Trip.ID))
		result.Status = match.StatusNoMatch
		result.Trip = nil
	}

	tu := result.Update
	td := tu.GetTrip()
	if result.HasTrip() {
		staticID := result.Trip.Trip.ID
		r.log.Debug("matched", slog.String("rt", td.GetTripId()), slog.String("static", staticID))
		td.TripId = proto.String(staticID)
		removeUnknownStops(result.Trip, tu)
	} else {
		r.log.Debug("unmatched",
			slog.String("rt", td.GetTripId()),
			slog.String("status", result.Status.String()))
		td.ScheduleRelationship = rt.TripDescriptor_ADDED.Enum()
	}
	return tu
}

// removeUnknownStops drops stop time updates for stops absent from the
// matched static trip. This trims the extra stops of an express trip
// running local alongside genuine timepoints.
func removeUnknownStops(at *trip.Activated, tu *rt.TripUpdate) {
	known := at.StopIDSet()
	kept := tu.GetStopTimeUpdate()[:0]
	for _, stu := range tu.GetStopTimeUpdate() {
		if known[stu.GetStopId()] {
			kept = append(kept, stu)
		}
	}
	tu.StopTimeUpdate = kept
}

// isExpired reports whether the update's latest stop event predates the
// feed timestamp by more than the expiry limit.
func isExpired(tu *rt.TripUpdate, timestamp int64) bool {
	latest := gtfsrt.LatestEventTime(tu)
	return latest > 0 && latest < timestamp-expiryLimitSec
}

// fixedStartDate reduces a malformed start date such as
// "2018-01-01T00:00:00" to its 8-digit date form.
func fixedStartDate(s string) string {
	if len(s) > 10 {
		s = s[:10]
	}
	return strings.ReplaceAll(s, "-", "")
}

func (r *Reconciler) reportRoute(routeID string, m *metrics.MatchMetrics) {
	defer r.recoverSink("route", routeID)
	r.sink.ReportRouteMetrics(routeID, m)
}

func (r *Reconciler) reportFeed(feedID string, m *metrics.MatchMetrics) {
	defer r.recoverSink("feed", feedID)
	r.sink.ReportFeedMetrics(feedID, m)
}

// Sink failures must not affect reconciliation output.
func (r *Reconciler) recoverSink(scope, id string) {
	if p := recover(); p != nil {
		r.log.Error("metrics sink panicked", slog.String(scope, id), slog.Any("panic", p))
	}
}
