package trip

import (
	"time"

	"github.com/transitforge/railproxy/gtfs"
)

// Activated is a static trip instantiated on one service date, with absolute
// start and end times and its ordered stop sequence. It is created by a
// matcher and never mutated afterwards.
type Activated struct {
	ServiceDate gtfs.ServiceDate
	Trip        *gtfs.Trip
	Identity    Identity
	IdentityOK  bool
	StopTimes   []gtfs.StopTime
	Start       int64 // epoch seconds of the first departure
	End         int64 // epoch seconds of the last arrival
}

// Activate builds an Activated trip from a static trip, its stop times, and
// a service date resolved in loc.
func Activate(sd gtfs.ServiceDate, t *gtfs.Trip, stopTimes []gtfs.StopTime, loc *time.Location) *Activated {
	id, ok := ParseStatic(t.ID, t.RouteID)
	at := &Activated{
		ServiceDate: sd,
		Trip:        t,
		Identity:    id,
		IdentityOK:  ok,
		StopTimes:   stopTimes,
	}
	if len(stopTimes) > 0 {
		midnight := sd.Midnight(loc).Unix()
		first, last := stopTimes[0], stopTimes[len(stopTimes)-1]
		at.Start = midnight + int64(firstOffset(first))
		at.End = midnight + int64(lastOffset(last))
	}
	return at
}

func firstOffset(st gtfs.StopTime) int {
	if st.HasDeparture {
		return st.Departure
	}
	return st.Arrival
}

func lastOffset(st gtfs.StopTime) int {
	if st.HasArrival {
		return st.Arrival
	}
	return st.Departure
}

// FirstStopID returns the first stop of the trip, or "" if it has no stops.
func (at *Activated) FirstStopID() string {
	if len(at.StopTimes) == 0 {
		return ""
	}
	return at.StopTimes[0].StopID
}

// LastStopID returns the final stop of the trip, or "" if it has no stops.
func (at *Activated) LastStopID() string {
	if len(at.StopTimes) == 0 {
		return ""
	}
	return at.StopTimes[len(at.StopTimes)-1].StopID
}

// StopIDSet returns the set of stops served by the trip.
func (at *Activated) StopIDSet() map[string]bool {
	set := make(map[string]bool, len(at.StopTimes))
	for _, st := range at.StopTimes {
		set[st.StopID] = true
	}
	return set
}
