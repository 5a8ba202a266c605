package gtfsrt

import (
	rt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
)

// ReplacementPeriods returns the NYCT trip replacement periods from a feed
// header, or nil when the header carries no NYCT extension.
func ReplacementPeriods(header *rt.FeedHeader) []*rt.TripReplacementPeriod {
	if header == nil || !proto.HasExtension(header, rt.E_NyctFeedHeader) {
		return nil
	}
	ext, ok := proto.GetExtension(header, rt.E_NyctFeedHeader).(*rt.NyctFeedHeader)
	if !ok || ext == nil {
		return nil
	}
	return ext.GetTripReplacementPeriod()
}

// NyctDescriptor returns the NYCT trip descriptor extension, or nil when
// the trip carries none.
func NyctDescriptor(td *rt.TripDescriptor) *rt.NyctTripDescriptor {
	if td == nil || !proto.HasExtension(td, rt.E_NyctTripDescriptor) {
		return nil
	}
	ext, ok := proto.GetExtension(td, rt.E_NyctTripDescriptor).(*rt.NyctTripDescriptor)
	if !ok {
		return nil
	}
	return ext
}

// TrainID returns the extension train id for a trip, or "" when absent.
func TrainID(td *rt.TripDescriptor) string {
	return NyctDescriptor(td).GetTrainId()
}
