package gtfs

import "time"

// ScheduleIndex stores the static schedule in memory for fast lookups. It
// implements ScheduleStore and is immutable once the loader returns it.
type ScheduleIndex struct {
	agencyID   string
	agencyTZ   string
	timezone   *time.Location
	routes     map[string]*Route    // route_id -> route
	trips      map[string]*Trip     // trip_id -> trip
	tripsByRoute map[string][]*Trip // route_id -> trips, stable file order
	stopTimes  map[string][]StopTime // trip_id -> ordered stop times

	calendars  map[string]calendar    // service_id -> weekly pattern
	exceptions map[string]map[string]int // date (YYYYMMDD) -> service_id -> exception_type

	maxStopTimeSec int
}

// calendar is a row of calendar.txt.
type calendar struct {
	days  [7]bool // indexed by time.Weekday
	start ServiceDate
	end   ServiceDate
}

const (
	exceptionAdded   = 1
	exceptionRemoved = 2
)

func newScheduleIndex() *ScheduleIndex {
	return &ScheduleIndex{
		timezone:     time.UTC,
		routes:       map[string]*Route{},
		trips:        map[string]*Trip{},
		tripsByRoute: map[string][]*Trip{},
		stopTimes:    map[string][]StopTime{},
		calendars:    map[string]calendar{},
		exceptions:   map[string]map[string]int{},
	}
}

// TripsForRoute returns all static trips on a route, in schedule file order.
func (g *ScheduleIndex) TripsForRoute(routeID string) []*Trip {
	return g.tripsByRoute[routeID]
}

// StopTimesForTrip returns the ordered stop times of a trip.
func (g *ScheduleIndex) StopTimesForTrip(trip *Trip) []StopTime {
	if trip == nil {
		return nil
	}
	return g.stopTimes[trip.ID]
}

// TripForID returns the trip with the given id.
func (g *ScheduleIndex) TripForID(tripID string) (*Trip, bool) {
	t, ok := g.trips[tripID]
	return t, ok
}

// RouteForID returns the route with the given id.
func (g *ScheduleIndex) RouteForID(routeID string) (*Route, bool) {
	r, ok := g.routes[routeID]
	return r, ok
}

// ServiceIDsActiveOn evaluates calendar.txt plus calendar_dates.txt
// exceptions for one date.
func (g *ScheduleIndex) ServiceIDsActiveOn(date ServiceDate) map[string]bool {
	active := make(map[string]bool)
	wd := date.Weekday()
	for serviceID, cal := range g.calendars {
		if cal.days[wd] && cal.start.Compare(date) <= 0 && date.Compare(cal.end) <= 0 {
			active[serviceID] = true
		}
	}
	for serviceID, exc := range g.exceptions[date.String()] {
		switch exc {
		case exceptionAdded:
			active[serviceID] = true
		case exceptionRemoved:
			delete(active, serviceID)
		}
	}
	return active
}

// AllTrips returns every static trip. Used by the trip activator to build
// its interval index at startup.
func (g *ScheduleIndex) AllTrips() []*Trip {
	out := make([]*Trip, 0, len(g.trips))
	for _, routeTrips := range g.tripsByRoute {
		out = append(out, routeTrips...)
	}
	return out
}

// Timezone returns the agency timezone, used to resolve service-date
// midnights. Defaults to UTC when agency.txt has none.
func (g *ScheduleIndex) Timezone() *time.Location {
	return g.timezone
}

// AgencyID returns the agency id from agency.txt.
func (g *ScheduleIndex) AgencyID() string { return g.agencyID }

// MaxStopTimeSec returns the largest stop-time offset in the schedule,
// which bounds how many service days a matcher must look back.
func (g *ScheduleIndex) MaxStopTimeSec() int { return g.maxStopTimeSec }
