package reconcile

import (
	"log/slog"
	"testing"
	"time"

	rt "github.com/jamespfennell/gtfs/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/match"
	"github.com/transitforge/railproxy/trip"
)

func tuWithTrainID(tripID, trainID string, stops ...*rt.TripUpdate_StopTimeUpdate) *rt.TripUpdate {
	td := &rt.TripDescriptor{TripId: proto.String(tripID)}
	if trainID != "" {
		proto.SetExtension(td, rt.E_NyctTripDescriptor, &rt.NyctTripDescriptor{TrainId: proto.String(trainID)})
	}
	return &rt.TripUpdate{Trip: td, StopTimeUpdate: stops}
}

func stu(stopID string, departure int64) *rt.TripUpdate_StopTimeUpdate {
	out := &rt.TripUpdate_StopTimeUpdate{StopId: proto.String(stopID)}
	if departure != 0 {
		out.Departure = &rt.TripUpdate_StopTimeEvent{Time: proto.Int64(departure)}
	}
	return out
}

func splitTripHalves() (*match.Result, *match.Result) {
	first := tuWithTrainID("086700_D..S", "1D 1427+ 101S/137S",
		stu("101S", 1000),
		stu("120S", 2000),
		stu("137S", 3000))
	second := tuWithTrainID("090000_D..S", "1D 1500+ 137S/242S",
		stu("137S", 3100),
		stu("150S", 4000),
		stu("242S", 0))
	return match.NewResult(first, match.StatusNoMatch), match.NewResult(second, match.StatusNoMatch)
}

func TestMergePairSplicesAtReliefPoint(t *testing.T) {
	r1, r2 := splitTripHalves()
	mergePair(r1, r2, slog.Default())

	assert.Equal(t, match.StatusMerged, r2.Status)
	stus := r1.Update.GetStopTimeUpdate()
	require.Len(t, stus, 5)
	assert.Equal(t, "137S", stus[2].GetStopId())
	assert.Equal(t, int64(3100), stus[2].GetDeparture().GetTime(), "boundary departure comes from the second half")
	assert.Equal(t, "150S", stus[3].GetStopId())
	assert.Equal(t, "242S", stus[4].GetStopId())
}

func TestMergePairOrdersByOriginDeparture(t *testing.T) {
	r1, r2 := splitTripHalves()
	// Present the later half first; the merge must reorder.
	mergePair(r2, r1, slog.Default())

	assert.Equal(t, match.StatusMerged, r2.Status)
	assert.Len(t, r1.Update.GetStopTimeUpdate(), 5)
}

func TestMergePairDoesNotMutateInputs(t *testing.T) {
	r1, r2 := splitTripHalves()
	orig1 := proto.Clone(r1.Update).(*rt.TripUpdate)
	orig2 := proto.Clone(r2.Update).(*rt.TripUpdate)

	mergePair(r1, r2, slog.Default())

	assert.True(t, proto.Equal(orig2, r2.Update), "second update must be unchanged")
	assert.False(t, proto.Equal(orig1, r1.Update), "first result holds a fresh merged update")
}

func TestMergePairReliefMismatch(t *testing.T) {
	r1, r2 := splitTripHalves()
	r2.Update = tuWithTrainID("090000_D..S", "1D 1500+ 999S/242S",
		stu("137S", 3100), stu("242S", 0))

	mergePair(r1, r2, slog.Default())
	assert.NotEqual(t, match.StatusMerged, r2.Status)
	assert.Len(t, r1.Update.GetStopTimeUpdate(), 3)
}

func TestMergePairBoundaryStopMismatch(t *testing.T) {
	r1, r2 := splitTripHalves()
	r2.Update = tuWithTrainID("090000_D..S", "1D 1500+ 137S/242S",
		stu("140S", 3100), stu("242S", 0))

	mergePair(r1, r2, slog.Default())
	assert.NotEqual(t, match.StatusMerged, r2.Status)
}

func TestMergePairMissingTrainID(t *testing.T) {
	r1, r2 := splitTripHalves()
	r2.Update = tuWithTrainID("090000_D..S", "", stu("137S", 3100))

	mergePair(r1, r2, slog.Default())
	assert.NotEqual(t, match.StatusMerged, r2.Status)
}

func TestMergeGroupsOnlyPairs(t *testing.T) {
	r1, r2 := splitTripHalves()
	third := match.NewResult(tuWithTrainID("100000_D..S", "1D 1600+ 137S/242S", stu("137S", 5000)), match.StatusNoMatch)

	groups := newResultGroups()
	groups.add(r1)
	groups.add(r2)
	groups.add(third)

	// Three distinct raw trip ids: three singleton groups, nothing merges.
	mergeGroups(groups, slog.Default())
	assert.NotEqual(t, match.StatusMerged, r1.Status)
	assert.NotEqual(t, match.StatusMerged, r2.Status)
	assert.NotEqual(t, match.StatusMerged, third.Status)
}

func TestMergeGroupsPairMatchedToSameTrip(t *testing.T) {
	// Two halves that both matched the same static trip land in one group
	// and merge.
	at := trip.Activate(
		gtfs.ServiceDate{Year: 2024, Month: 6, Day: 2},
		&gtfs.Trip{ID: "AFA23GEN-D051-Sunday-00_086700_D..S14R", RouteID: "D", ServiceID: "Sunday"},
		[]gtfs.StopTime{{StopID: "101S", Departure: 52020, HasDeparture: true}},
		time.UTC)
	r1, r2 := splitTripHalves()
	r1.Status, r1.Trip = match.StatusLooseMatch, at
	r2.Status, r2.Trip = match.StatusLooseMatchCoerced, at

	groups := newResultGroups()
	groups.add(r1)
	groups.add(r2)
	mergeGroups(groups, slog.Default())

	assert.Equal(t, match.StatusMerged, r2.Status)
	assert.Len(t, r1.Update.GetStopTimeUpdate(), 5)
}

func TestReliefPoint(t *testing.T) {
	tu := tuWithTrainID("086700_D..S", "1D 1427+ 101S/137S")
	assert.Equal(t, "101S", reliefPoint(tu, 0))
	assert.Equal(t, "137S", reliefPoint(tu, 1))
	assert.Equal(t, "", reliefPoint(tu, 2))
	assert.Equal(t, "", reliefPoint(tuWithTrainID("086700_D..S", ""), 0))
}
