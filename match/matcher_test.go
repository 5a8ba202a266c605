package match

import (
	"time"

	rt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitforge/railproxy/gtfs"
)

// fakeStore is an in-memory ScheduleSource for matcher tests.
type fakeStore struct {
	routes       map[string]*gtfs.Route
	tripsByRoute map[string][]*gtfs.Trip
	stopTimes    map[string][]gtfs.StopTime
	active       map[string]map[string]bool // date -> service ids
	maxStopTime  int
}

func (f *fakeStore) TripsForRoute(routeID string) []*gtfs.Trip {
	return f.tripsByRoute[routeID]
}

func (f *fakeStore) StopTimesForTrip(t *gtfs.Trip) []gtfs.StopTime {
	return f.stopTimes[t.ID]
}

func (f *fakeStore) ServiceIDsActiveOn(date gtfs.ServiceDate) map[string]bool {
	return f.active[date.String()]
}

func (f *fakeStore) RouteForID(routeID string) (*gtfs.Route, bool) {
	r, ok := f.routes[routeID]
	return r, ok
}

func (f *fakeStore) AllTrips() []*gtfs.Trip {
	var out []*gtfs.Trip
	for _, trips := range f.tripsByRoute {
		out = append(out, trips...)
	}
	return out
}

func (f *fakeStore) MaxStopTimeSec() int { return f.maxStopTime }

// newTestStore builds a schedule with two southbound trips on route 1 for
// Sunday 2024-06-02 and one late-night trip on the preceding Saturday that
// runs past its midnight.
func newTestStore() *fakeStore {
	sunday := &gtfs.Trip{ID: "AFA23GEN-1038-Sunday-00_063600_1..S03R", RouteID: "1", ServiceID: "Sunday"}
	sundayEarly := &gtfs.Trip{ID: "AFA23GEN-1038-Sunday-00_063000_1..S03R", RouteID: "1", ServiceID: "Sunday"}
	saturdayLate := &gtfs.Trip{ID: "AFA23GEN-1038-Saturday-00_144200_1..S03R", RouteID: "1", ServiceID: "Saturday"}

	return &fakeStore{
		routes: map[string]*gtfs.Route{
			"1": {ID: "1", ShortName: "1", Type: 1},
		},
		tripsByRoute: map[string][]*gtfs.Trip{
			"1": {sunday, sundayEarly, saturdayLate},
		},
		stopTimes: map[string][]gtfs.StopTime{
			sunday.ID: {
				{StopID: "101S", Departure: 38160, HasDeparture: true},
				{StopID: "103S", Arrival: 38400, HasArrival: true, Departure: 38430, HasDeparture: true},
				{StopID: "104S", Arrival: 38700, HasArrival: true},
			},
			sundayEarly.ID: {
				{StopID: "101S", Departure: 37800, HasDeparture: true},
				{StopID: "104S", Arrival: 38100, HasArrival: true},
			},
			saturdayLate.ID: {
				{StopID: "201S", Departure: 86520, HasDeparture: true},
				{StopID: "202S", Arrival: 87300, HasArrival: true},
			},
		},
		active: map[string]map[string]bool{
			"20240602": {"Sunday": true},
			"20240601": {"Saturday": true},
		},
		maxStopTime: 87300,
	}
}

func newTU(tripID, routeID string) *rt.TripUpdate {
	return &rt.TripUpdate{
		Trip: &rt.TripDescriptor{
			TripId:  proto.String(tripID),
			RouteId: proto.String(routeID),
		},
	}
}

func sundayNoon() int64 {
	return time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC).Unix()
}
