// Package export renders reconciled trip updates as a standard
// GTFS-Realtime feed, without the upstream extension fields.
package export

import (
	"strconv"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	rt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Build assembles a standard feed message from reconciled updates. Entity
// ids are sequential within the message.
func Build(updates []*rt.TripUpdate, timestamp time.Time) *gtfsrtpb.FeedMessage {
	ts := uint64(timestamp.Unix())
	msg := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
	}
	for i, tu := range updates {
		msg.Entity = append(msg.Entity, &gtfsrtpb.FeedEntity{
			Id:         proto.String(strconv.Itoa(i + 1)),
			TripUpdate: convertTripUpdate(tu),
		})
	}
	return msg
}

// Marshal encodes the feed in protobuf wire format.
func Marshal(msg *gtfsrtpb.FeedMessage) ([]byte, error) {
	return proto.Marshal(msg)
}

// MarshalJSON encodes the feed as JSON for debugging endpoints.
func MarshalJSON(msg *gtfsrtpb.FeedMessage) ([]byte, error) {
	return protojson.Marshal(msg)
}

func convertTripUpdate(tu *rt.TripUpdate) *gtfsrtpb.TripUpdate {
	out := &gtfsrtpb.TripUpdate{
		Trip: convertTripDescriptor(tu.GetTrip()),
	}
	if tu.Delay != nil {
		out.Delay = proto.Int32(tu.GetDelay())
	}
	if tu.Timestamp != nil {
		out.Timestamp = proto.Uint64(tu.GetTimestamp())
	}
	for _, stu := range tu.GetStopTimeUpdate() {
		out.StopTimeUpdate = append(out.StopTimeUpdate, convertStopTimeUpdate(stu))
	}
	return out
}

func convertTripDescriptor(td *rt.TripDescriptor) *gtfsrtpb.TripDescriptor {
	if td == nil {
		return nil
	}
	out := &gtfsrtpb.TripDescriptor{}
	if td.TripId != nil {
		out.TripId = proto.String(td.GetTripId())
	}
	if td.RouteId != nil {
		out.RouteId = proto.String(td.GetRouteId())
	}
	if td.StartDate != nil {
		out.StartDate = proto.String(td.GetStartDate())
	}
	if td.StartTime != nil {
		out.StartTime = proto.String(td.GetStartTime())
	}
	if td.DirectionId != nil {
		out.DirectionId = proto.Uint32(td.GetDirectionId())
	}
	if td.ScheduleRelationship != nil {
		// The schedule relationship enums agree numerically across the
		// two bindings.
		rel := gtfsrtpb.TripDescriptor_ScheduleRelationship(td.GetScheduleRelationship())
		out.ScheduleRelationship = &rel
	}
	return out
}

func convertStopTimeUpdate(stu *rt.TripUpdate_StopTimeUpdate) *gtfsrtpb.TripUpdate_StopTimeUpdate {
	out := &gtfsrtpb.TripUpdate_StopTimeUpdate{}
	if stu.StopId != nil {
		out.StopId = proto.String(stu.GetStopId())
	}
	if stu.StopSequence != nil {
		out.StopSequence = proto.Uint32(stu.GetStopSequence())
	}
	if a := stu.GetArrival(); a != nil {
		out.Arrival = convertStopTimeEvent(a)
	}
	if d := stu.GetDeparture(); d != nil {
		out.Departure = convertStopTimeEvent(d)
	}
	if stu.ScheduleRelationship != nil {
		rel := gtfsrtpb.TripUpdate_StopTimeUpdate_ScheduleRelationship(stu.GetScheduleRelationship())
		out.ScheduleRelationship = &rel
	}
	return out
}

func convertStopTimeEvent(e *rt.TripUpdate_StopTimeEvent) *gtfsrtpb.TripUpdate_StopTimeEvent {
	out := &gtfsrtpb.TripUpdate_StopTimeEvent{}
	if e.Time != nil {
		out.Time = proto.Int64(e.GetTime())
	}
	if e.Delay != nil {
		out.Delay = proto.Int32(e.GetDelay())
	}
	if e.Uncertainty != nil {
		out.Uncertainty = proto.Int32(e.GetUncertainty())
	}
	return out
}
