package match

import (
	"log/slog"
	"time"

	rt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/trip"
)

// Reports claiming to start within the first three hours after midnight may
// belong to a trip still running on the previous day's virtual >24h
// schedule, so those also scan the previous service date.
const earlyMorningCutoff = 3 * 60 * 100

// ScanningMatcher scans all static trips sharing route and direction with
// the report, across up to two service days, and scores every candidate.
// It needs no per-window precomputation.
type ScanningMatcher struct {
	store gtfs.ScheduleStore
	tz    *time.Location
	opts  Options
	log   *slog.Logger
}

// NewScanningMatcher builds the scanning strategy. tz resolves service-date
// midnights and must match the schedule's agency timezone.
func NewScanningMatcher(store gtfs.ScheduleStore, tz *time.Location, opts Options, log *slog.Logger) *ScanningMatcher {
	if log == nil {
		log = slog.Default()
	}
	return &ScanningMatcher{store: store, tz: tz, opts: opts, log: log}
}

// InitForWindow is a no-op; the scanning strategy keeps no window state.
func (m *ScanningMatcher) InitForWindow(Window) {}

// Match resolves one trip update against the static schedule.
func (m *ScanningMatcher) Match(tu *rt.TripUpdate, id trip.Identity, parsed bool, timestamp int64) *Result {
	if !parsed {
		return NewResult(tu, StatusBadTripID)
	}

	sd := gtfs.NewServiceDate(time.Unix(timestamp, 0).In(m.tz))
	var candidates []*Result
	found := m.addCandidates(tu, id, sd, &candidates)

	if id.OriginDeparture < earlyMorningCutoff {
		found = m.addCandidates(tu, id.RelativeToPreviousDay(), sd.Previous(), &candidates) || found
	}

	if len(candidates) == 0 {
		if found {
			return NewResult(tu, StatusNoMatch)
		}
		return NewResult(tu, StatusNoTripWithStartDate)
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Compare(best) > 0 {
			best = c
		}
	}
	return best
}

// addCandidates scores every static trip on the report's route against id
// for one service date. It returns true if any trip shared route and
// direction, which distinguishes NO_MATCH from NO_TRIP_WITH_START_DATE.
func (m *ScanningMatcher) addCandidates(tu *rt.TripUpdate, id trip.Identity, sd gtfs.ServiceDate, candidates *[]*Result) bool {
	routeID := tu.GetTrip().GetRouteId()
	if _, ok := m.store.RouteForID(routeID); !ok {
		return false
	}
	active := m.store.ServiceIDsActiveOn(sd)

	found := false
	for _, t := range m.store.TripsForRoute(routeID) {
		atid, ok := trip.ParseStatic(t.ID, t.RouteID)
		if !ok || !atid.RouteDirMatch(id) {
			continue
		}
		found = true

		stopTimes := m.store.StopTimesForTrip(t)
		if len(stopTimes) == 0 {
			continue
		}
		onServiceDay := active[t.ServiceID]

		if atid.StrictMatch(id) && onServiceDay {
			*candidates = append(*candidates, StrictResult(tu, trip.Activate(sd, t, stopTimes, m.tz)))
			continue
		}

		// Loose match: the realtime trip may be running late relative to
		// the static trip. Candidates that are both coerced and on a
		// different service day are discarded.
		delta := id.OriginDepartureSec() - startOffset(stopTimes[0])
		if !m.opts.DisableLooseMatch && delta >= 0 && delta < m.opts.lateTripLimitSec() {
			if onServiceDay || delta == 0 {
				at := trip.Activate(sd, t, stopTimes, m.tz)
				*candidates = append(*candidates, LooseResult(tu, at, delta, onServiceDay))
			}
		}
	}
	return found
}

func startOffset(st gtfs.StopTime) int {
	if st.HasDeparture {
		return st.Departure
	}
	return st.Arrival
}
