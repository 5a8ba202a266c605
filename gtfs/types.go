package gtfs

// Route is a row of routes.txt.
type Route struct {
	ID        string
	ShortName string
	Type      int
}

// Trip is a row of trips.txt. Only the fields the reconciler needs are kept.
type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
}

// StopTime is a row of stop_times.txt with times converted to seconds into
// the service day. GTFS allows hours past 24 for trips that run over
// midnight, so offsets may exceed 86400.
type StopTime struct {
	StopID       string
	Arrival      int
	Departure    int
	HasArrival   bool
	HasDeparture bool
}

// ScheduleStore is the read-only view of the static schedule consumed by the
// matchers. Implementations must be immutable once constructed. Lookups for
// unknown routes or trips return empty results, never errors.
type ScheduleStore interface {
	TripsForRoute(routeID string) []*Trip
	StopTimesForTrip(trip *Trip) []StopTime
	ServiceIDsActiveOn(date ServiceDate) map[string]bool
	RouteForID(routeID string) (*Route, bool)
}
