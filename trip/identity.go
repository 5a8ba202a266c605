package trip

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identity is a GTFS or realtime trip identifier broken into its constituent
// parts; most importantly route, direction, and origin-departure time.
//
// Origin-departure time is encoded as hundredths of a minute after midnight.
// To convert to seconds, multiply by 0.6.
type Identity struct {
	OriginDeparture int    // hundredths of a minute past midnight
	PathID          string // route token padded to width 3 with '.', plus direction
	RouteID         string
	Direction       string // "N" or "S"
	NetworkID       string // empty when the id carries no network token
}

// hundredthsPerDay is one full service day in origin-departure time units.
const hundredthsPerDay = 24 * 60 * 100

var idPattern = regexp.MustCompile(`([A-Z0-9]+_)?([0-9]{6})_?([A-Z0-9]+)\.+([NS])([A-Z0-9]*)$`)

// Parse breaks a trip id into an Identity. The second return value reports
// whether the id matched the expected pattern; callers must treat a failed
// parse as an ordinary outcome, not an error.
func Parse(tripID string) (Identity, bool) {
	m := idPattern.FindStringSubmatch(tripID)
	if m == nil {
		return Identity{}, false
	}
	odt, err := strconv.Atoi(m[2])
	if err != nil {
		return Identity{}, false
	}
	route, dir := m[3], m[4]
	return Identity{
		OriginDeparture: odt,
		PathID:          padRoute(route) + dir,
		RouteID:         route,
		Direction:       dir,
		NetworkID:       m[5],
	}, true
}

// ParseStatic parses a static trip id but takes the authoritative route id
// from the schedule, since some static trips carry a different token in the
// route position of the id.
func ParseStatic(tripID, routeID string) (Identity, bool) {
	id, ok := Parse(tripID)
	if !ok {
		return Identity{}, false
	}
	id.RouteID = routeID
	return id, true
}

func padRoute(route string) string {
	if len(route) >= 3 {
		return route
	}
	return route + strings.Repeat(".", 3-len(route))
}

// String returns the canonical form: zero-padded origin-departure time,
// underscore, path id.
func (id Identity) String() string {
	return fmt.Sprintf("%06d_%s", id.OriginDeparture, id.PathID)
}

// StrictMatch reports whether route, direction, origin-departure time and
// network id all agree. The network id must be present on both sides.
func (id Identity) StrictMatch(other Identity) bool {
	return id.LooseMatch(other) && id.NetworkID != "" && id.NetworkID == other.NetworkID
}

// LooseMatch reports whether route, direction and origin-departure time
// agree, ignoring the network id.
func (id Identity) LooseMatch(other Identity) bool {
	return id.RouteDirMatch(other) && id.OriginDeparture == other.OriginDeparture
}

// RouteDirMatch reports whether route and direction agree.
func (id Identity) RouteDirMatch(other Identity) bool {
	return id.RouteID == other.RouteID && id.Direction == other.Direction
}

// RelativeToPreviousDay returns a copy reinterpreted against the previous
// day's schedule, which runs a virtual service day longer than 24 hours.
func (id Identity) RelativeToPreviousDay() Identity {
	id.OriginDeparture += hundredthsPerDay
	return id
}

// OriginDepartureSec returns the origin-departure time in seconds past
// midnight.
func (id Identity) OriginDepartureSec() int {
	return id.OriginDeparture * 6 / 10
}
