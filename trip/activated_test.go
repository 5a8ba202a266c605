package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitforge/railproxy/gtfs"
)

func TestActivate(t *testing.T) {
	sd := gtfs.ServiceDate{Year: 2024, Month: 6, Day: 2}
	tr := &gtfs.Trip{ID: "AFA23GEN-1038-Sunday-00_063600_1..S03R", RouteID: "1", ServiceID: "Sunday"}
	stopTimes := []gtfs.StopTime{
		{StopID: "101S", Departure: 38160, HasDeparture: true},
		{StopID: "103S", Arrival: 38400, HasArrival: true, Departure: 38430, HasDeparture: true},
		{StopID: "104S", Arrival: 38700, HasArrival: true},
	}

	at := Activate(sd, tr, stopTimes, time.UTC)

	require.True(t, at.IdentityOK)
	assert.Equal(t, 63600, at.Identity.OriginDeparture)
	midnight := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, midnight+38160, at.Start)
	assert.Equal(t, midnight+38700, at.End)
	assert.Equal(t, "101S", at.FirstStopID())
	assert.Equal(t, "104S", at.LastStopID())
	assert.Equal(t, map[string]bool{"101S": true, "103S": true, "104S": true}, at.StopIDSet())
}

func TestActivateUnparseableID(t *testing.T) {
	sd := gtfs.ServiceDate{Year: 2024, Month: 6, Day: 2}
	tr := &gtfs.Trip{ID: "weird-trip-id", RouteID: "1", ServiceID: "Sunday"}
	at := Activate(sd, tr, []gtfs.StopTime{{StopID: "101S", Departure: 100, HasDeparture: true}}, time.UTC)
	assert.False(t, at.IdentityOK)
}
