package match

import (
	"time"

	"github.com/tidwall/rtree"

	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/trip"
)

// Activator finds the static trips active during a time range. It keys an
// interval index by each trip's span of stop-time offsets, built once at
// startup, and looks back across enough previous service days to cover a
// trip that started the previous day and is still running.
type Activator struct {
	store       ScheduleSource
	tz          *time.Location
	tree        rtree.RTreeG[*gtfs.Trip]
	maxLookback int
}

// NewActivator builds the interval index. lookbackDays bounds the service
// days considered; when zero it is derived from the schedule's longest
// trip span.
func NewActivator(store ScheduleSource, tz *time.Location, lookbackDays int) *Activator {
	a := &Activator{store: store, tz: tz}
	for _, t := range store.AllTrips() {
		lo, hi, ok := stopTimeSpan(store.StopTimesForTrip(t))
		if !ok {
			continue
		}
		a.tree.Insert([2]float64{float64(lo), 0}, [2]float64{float64(hi), 0}, t)
	}
	if lookbackDays <= 0 {
		lookbackDays = (store.MaxStopTimeSec() + 86399) / 86400
		if lookbackDays < 1 {
			lookbackDays = 1
		}
	}
	a.maxLookback = lookbackDays
	return a
}

// TripsForRange activates every trip on the given routes whose stop-time
// span intersects [start, end], considering the service date of start and
// up to maxLookback-1 preceding dates.
func (a *Activator) TripsForRange(start, end time.Time, routeIDs map[string]bool) []*trip.Activated {
	var out []*trip.Activated
	sd := gtfs.NewServiceDate(start.In(a.tz))
	for i := 0; i < a.maxLookback; i++ {
		active := a.store.ServiceIDsActiveOn(sd)
		origin := sd.Midnight(a.tz).Unix()
		lo := float64(start.Unix() - origin)
		hi := float64(end.Unix() - origin)
		day := sd
		a.tree.Search([2]float64{lo, 0}, [2]float64{hi, 0}, func(_, _ [2]float64, t *gtfs.Trip) bool {
			if routeIDs[t.RouteID] && active[t.ServiceID] {
				out = append(out, trip.Activate(day, t, a.store.StopTimesForTrip(t), a.tz))
			}
			return true
		})
		sd = sd.Previous()
	}
	return out
}

func stopTimeSpan(stopTimes []gtfs.StopTime) (lo, hi int, ok bool) {
	for _, st := range stopTimes {
		if st.HasArrival {
			lo, hi, ok = extend(lo, hi, st.Arrival, ok)
		}
		if st.HasDeparture {
			lo, hi, ok = extend(lo, hi, st.Departure, ok)
		}
	}
	return lo, hi, ok
}

func extend(lo, hi, v int, ok bool) (int, int, bool) {
	if !ok {
		return v, v, true
	}
	if v < lo {
		lo = v
	}
	if v > hi {
		hi = v
	}
	return lo, hi, true
}
