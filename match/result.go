package match

import (
	rt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitforge/railproxy/trip"
)

// Status grades the outcome of matching one trip update against the static
// schedule. Values are ordered worst to best so candidate selection can
// compare them directly.
type Status int

const (
	StatusBadTripID Status = iota
	StatusNoTripWithStartDate
	StatusNoMatch
	StatusMerged
	StatusLooseMatchOtherDay
	StatusLooseMatchCoerced
	StatusLooseMatch
	StatusStrictMatch
)

func (s Status) String() string {
	switch s {
	case StatusBadTripID:
		return "BAD_TRIP_ID"
	case StatusNoTripWithStartDate:
		return "NO_TRIP_WITH_START_DATE"
	case StatusNoMatch:
		return "NO_MATCH"
	case StatusMerged:
		return "MERGED"
	case StatusLooseMatchOtherDay:
		return "LOOSE_MATCH_OTHER_DAY"
	case StatusLooseMatchCoerced:
		return "LOOSE_MATCH_COERCED"
	case StatusLooseMatch:
		return "LOOSE_MATCH"
	case StatusStrictMatch:
		return "STRICT_MATCH"
	default:
		return "UNKNOWN"
	}
}

// Matched reports whether the status carries a matched static trip.
func (s Status) Matched() bool {
	return s == StatusMerged || s >= StatusLooseMatchOtherDay
}

// Result is the outcome of matching one realtime trip update. Trip is set
// iff the status is one of the four match grades or MERGED. Lateness is the
// seconds by which the realtime trip runs behind the matched static trip.
type Result struct {
	Update   *rt.TripUpdate
	Status   Status
	Trip     *trip.Activated
	Lateness int
}

// NewResult builds a result with no matched trip.
func NewResult(tu *rt.TripUpdate, status Status) *Result {
	return &Result{Update: tu, Status: status}
}

// StrictResult builds a perfect-match result.
func StrictResult(tu *rt.TripUpdate, at *trip.Activated) *Result {
	return &Result{Update: tu, Status: StatusStrictMatch, Trip: at}
}

// LooseResult grades a loose candidate: exact-time matches are LOOSE_MATCH,
// late ones LOOSE_MATCH_COERCED, and candidates whose trip is not on the
// resolved service day LOOSE_MATCH_OTHER_DAY.
func LooseResult(tu *rt.TripUpdate, at *trip.Activated, delta int, onServiceDay bool) *Result {
	status := StatusLooseMatch
	if delta > 0 {
		status = StatusLooseMatchCoerced
	}
	if !onServiceDay {
		status = StatusLooseMatchOtherDay
	}
	return &Result{Update: tu, Status: status, Trip: at, Lateness: delta}
}

// HasTrip reports whether the result carries a matched static trip.
func (r *Result) HasTrip() bool {
	return r.Trip != nil
}

// Compare returns a negative number, zero, or a positive number as r is
// worse than, equal to, or better than other. Between two coerced matches
// the one with the smaller lateness wins.
func (r *Result) Compare(other *Result) int {
	if r.Status == StatusLooseMatchCoerced && other.Status == StatusLooseMatchCoerced {
		return other.Lateness - r.Lateness
	}
	return int(r.Status) - int(other.Status)
}

// TripID returns the matched static trip id when present, otherwise the
// update's raw trip id. Results are grouped by this key ahead of merging.
func (r *Result) TripID() string {
	if r.HasTrip() {
		return r.Trip.Trip.ID
	}
	return r.Update.GetTrip().GetTripId()
}

// LastStopMatches reports whether the update's final stop equals the matched
// static trip's final stop. A mismatch means either a merge that did not
// happen or a genuinely diverging trip; the reconciler demotes such results.
func (r *Result) LastStopMatches() bool {
	stus := r.Update.GetStopTimeUpdate()
	if !r.HasTrip() || len(stus) == 0 {
		return false
	}
	return stus[len(stus)-1].GetStopId() == r.Trip.LastStopID()
}
