package match

import (
	"time"

	rt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/trip"
)

// Window is one schedule window (trip replacement period): a time range and
// the set of routes whose live reports should be matched against the static
// schedule during that range.
type Window struct {
	Start    time.Time
	End      time.Time
	RouteIDs map[string]bool
}

// Matcher matches realtime trip updates to static trips.
//
// InitForWindow is called once per schedule window before any report in that
// window is matched; strategies that precompute per-window state do it
// there. It must not be called concurrently with Match.
type Matcher interface {
	InitForWindow(w Window)

	// Match resolves one trip update. id is the parsed identity of the
	// update's trip id and parsed reports whether parsing succeeded; an
	// unparseable id yields a BAD_TRIP_ID result without any scan.
	Match(tu *rt.TripUpdate, id trip.Identity, parsed bool, timestamp int64) *Result
}

// Options tunes a matcher. The zero value enables loose matching with the
// default one-hour lateness limit.
type Options struct {
	// LateTripLimitSec bounds how late a realtime trip may run relative to
	// a static trip and still be coerced into a loose match. Default 3600.
	LateTripLimitSec int

	// DisableLooseMatch restricts matching to strict identity matches.
	DisableLooseMatch bool

	// LookbackDays bounds how many previous service days the indexed
	// strategy considers. When zero it is derived from the schedule's
	// longest trip.
	LookbackDays int
}

const defaultLateTripLimitSec = 3600

func (o Options) lateTripLimitSec() int {
	if o.LateTripLimitSec <= 0 {
		return defaultLateTripLimitSec
	}
	return o.LateTripLimitSec
}

// ScheduleSource is what the matchers need from the static schedule: the
// consumed store interface plus whole-schedule access for building the
// interval index.
type ScheduleSource interface {
	gtfs.ScheduleStore
	AllTrips() []*gtfs.Trip
	MaxStopTimeSec() int
}
