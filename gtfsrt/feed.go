package gtfsrt

import (
	rt "github.com/jamespfennell/gtfs/proto"
)

// LatestEventTime returns the largest predicted event time in a trip
// update, preferring the departure over the arrival at each stop. Zero
// means the update carries no timed events.
func LatestEventTime(tu *rt.TripUpdate) int64 {
	var latest int64
	for _, stu := range tu.GetStopTimeUpdate() {
		t := stu.GetDeparture().GetTime()
		if t == 0 {
			t = stu.GetArrival().GetTime()
		}
		if t > latest {
			latest = t
		}
	}
	return latest
}

// TripUpdates extracts the trip update entities from a feed, dropping
// entities of other kinds.
func TripUpdates(msg *rt.FeedMessage) []*rt.TripUpdate {
	var out []*rt.TripUpdate
	for _, e := range msg.GetEntity() {
		if tu := e.GetTripUpdate(); tu != nil {
			out = append(out, tu)
		}
	}
	return out
}
