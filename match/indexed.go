package match

import (
	"log/slog"
	"sort"
	"time"

	rt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/trip"
)

// IndexedMatcher precomputes the set of active trips for a feed window and
// matches against that set only. Unlike ScanningMatcher it never walks the
// whole schedule per update, at the cost of an InitForWindow call before
// each batch.
type IndexedMatcher struct {
	activator *Activator
	tz        *time.Location
	opts      Options
	log       *slog.Logger

	byRoute map[string][]*trip.Activated
}

func NewIndexedMatcher(store ScheduleSource, tz *time.Location, opts Options, log *slog.Logger) *IndexedMatcher {
	if log == nil {
		log = slog.Default()
	}
	return &IndexedMatcher{
		activator: NewActivator(store, tz, opts.LookbackDays),
		tz:        tz,
		opts:      opts,
		log:       log,
	}
}

// InitForWindow activates the trips intersecting the window and buckets them
// by route. Buckets are sorted by static trip ID so matching is
// deterministic across runs.
func (m *IndexedMatcher) InitForWindow(w Window) {
	m.byRoute = make(map[string][]*trip.Activated)
	for _, at := range m.activator.TripsForRange(w.Start, w.End, w.RouteIDs) {
		m.byRoute[at.Trip.RouteID] = append(m.byRoute[at.Trip.RouteID], at)
	}
	for _, bucket := range m.byRoute {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Trip.ID < bucket[j].Trip.ID })
	}
}

func (m *IndexedMatcher) Match(tu *rt.TripUpdate, id trip.Identity, parsed bool, timestamp int64) *Result {
	if !parsed {
		return NewResult(tu, StatusBadTripID)
	}
	sd := gtfs.NewServiceDate(time.Unix(timestamp, 0).In(m.tz))
	updateOrigin := sd.Midnight(m.tz).Unix()
	updateStart := updateOrigin + int64(id.OriginDepartureSec())

	var best *Result
	found := false
	for _, at := range m.byRoute[id.RouteID] {
		if !at.IdentityOK {
			continue
		}
		if !id.RouteDirMatch(at.Identity) {
			continue
		}
		found = true

		// A candidate activated on an earlier service date runs on that
		// day's virtual >24h clock; shift the report's identity back to
		// that clock before comparing. The activator has already verified
		// the candidate is on its own service day.
		shifted := id
		day := sd
		for day.Compare(at.ServiceDate) > 0 {
			shifted = shifted.RelativeToPreviousDay()
			day = day.Previous()
		}
		if at.Identity.StrictMatch(shifted) {
			best = better(best, StrictResult(tu, at))
			continue
		}
		if m.opts.DisableLooseMatch {
			continue
		}
		delta := int(updateStart - at.Start)
		if delta < 0 || delta >= m.opts.lateTripLimitSec() {
			continue
		}
		best = better(best, LooseResult(tu, at, delta, true))
	}
	if best == nil {
		if found {
			return NewResult(tu, StatusNoMatch)
		}
		return NewResult(tu, StatusNoTripWithStartDate)
	}
	return best
}

func better(best, cand *Result) *Result {
	if best == nil || cand.Compare(best) > 0 {
		return cand
	}
	return best
}
