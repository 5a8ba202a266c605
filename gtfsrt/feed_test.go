package gtfsrt

import (
	"testing"

	rt "github.com/jamespfennell/gtfs/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestReplacementPeriods(t *testing.T) {
	header := &rt.FeedHeader{GtfsRealtimeVersion: proto.String("1.0")}
	assert.Nil(t, ReplacementPeriods(header), "no extension means no windows")
	assert.Nil(t, ReplacementPeriods(nil))

	proto.SetExtension(header, rt.E_NyctFeedHeader, &rt.NyctFeedHeader{
		NyctSubwayVersion: proto.String("1.0"),
		TripReplacementPeriod: []*rt.TripReplacementPeriod{
			{RouteId: proto.String("1")},
			{RouteId: proto.String("A, C, E")},
		},
	})
	trps := ReplacementPeriods(header)
	require.Len(t, trps, 2)
	assert.Equal(t, "A, C, E", trps[1].GetRouteId())
}

func TestTrainID(t *testing.T) {
	td := &rt.TripDescriptor{TripId: proto.String("086700_D..S")}
	assert.Equal(t, "", TrainID(td))
	assert.Equal(t, "", TrainID(nil))

	proto.SetExtension(td, rt.E_NyctTripDescriptor, &rt.NyctTripDescriptor{
		TrainId: proto.String("1D 1427+ 101S/137S"),
	})
	assert.Equal(t, "1D 1427+ 101S/137S", TrainID(td))
}

func TestLatestEventTime(t *testing.T) {
	tu := &rt.TripUpdate{
		StopTimeUpdate: []*rt.TripUpdate_StopTimeUpdate{
			{
				StopId:    proto.String("101S"),
				Arrival:   &rt.TripUpdate_StopTimeEvent{Time: proto.Int64(1000)},
				Departure: &rt.TripUpdate_StopTimeEvent{Time: proto.Int64(1100)},
			},
			{
				StopId:  proto.String("104S"),
				Arrival: &rt.TripUpdate_StopTimeEvent{Time: proto.Int64(1050)},
			},
		},
	}
	// The departure at the first stop outranks the later stop's arrival.
	assert.Equal(t, int64(1100), LatestEventTime(tu))
	assert.Equal(t, int64(0), LatestEventTime(&rt.TripUpdate{}))
}

func TestTripUpdates(t *testing.T) {
	msg := &rt.FeedMessage{
		Entity: []*rt.FeedEntity{
			{Id: proto.String("1"), TripUpdate: &rt.TripUpdate{}},
			{Id: proto.String("2")},
			{Id: proto.String("3"), TripUpdate: &rt.TripUpdate{}},
		},
	}
	assert.Len(t, TripUpdates(msg), 2)
}
