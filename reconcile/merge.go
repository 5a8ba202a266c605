package reconcile

import (
	"log/slog"
	"strings"

	rt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitforge/railproxy/gtfsrt"
	"github.com/transitforge/railproxy/match"
	"github.com/transitforge/railproxy/trip"
)

// mergeGroups splices split trip reports back together. The upstream
// source sometimes emits two reports for one trip with a mid-line crew
// relief; the relief stops ride along in the train id, so a pair whose
// relief points and boundary stop agree is reassembled into one report.
func mergeGroups(groups *resultGroups, log *slog.Logger) {
	for _, group := range groups.inOrder() {
		if len(group) != 2 {
			continue
		}
		mergePair(group[0], group[1], log)
	}
}

// mergePair merges second into first when they are the two halves of one
// trip, ordering the pair by origin departure first. On success first
// carries the full stop list and second is marked MERGED. Neither input
// update is mutated; the merged update is a fresh message.
func mergePair(first, second *match.Result, log *slog.Logger) {
	firstID, ok1 := trip.Parse(first.Update.GetTrip().GetTripId())
	secondID, ok2 := trip.Parse(second.Update.GetTrip().GetTripId())
	if !ok1 || !ok2 {
		return
	}
	if firstID.OriginDeparture > secondID.OriginDeparture {
		first, second = second, first
	}

	relief0 := reliefPoint(first.Update, 1)
	relief1 := reliefPoint(second.Update, 0)
	if relief0 == "" || relief0 != relief1 {
		return
	}

	firstStus := first.Update.GetStopTimeUpdate()
	secondStus := second.Update.GetStopTimeUpdate()
	if len(firstStus) == 0 || len(secondStus) == 0 {
		return
	}
	boundary := firstStus[len(firstStus)-1]
	if boundary.GetStopId() != secondStus[0].GetStopId() {
		return
	}

	merged := proto.Clone(first.Update).(*rt.TripUpdate)
	stus := merged.GetStopTimeUpdate()
	if d := secondStus[0].GetDeparture(); d != nil {
		stus[len(stus)-1].Departure = proto.Clone(d).(*rt.TripUpdate_StopTimeEvent)
	} else {
		stus[len(stus)-1].Departure = nil
	}
	for _, stu := range secondStus[1:] {
		stus = append(stus, proto.Clone(stu).(*rt.TripUpdate_StopTimeUpdate))
	}
	merged.StopTimeUpdate = stus

	first.Update = merged
	second.Status = match.StatusMerged
	log.Debug("merged split trip",
		slog.String("first", firstID.String()),
		slog.String("second", secondID.String()),
		slog.String("relief", relief0))
}

// reliefPoint extracts relief stop pt from an update's train id. The
// relief list is the last whitespace-separated token, itself slash
// separated. Returns "" when the list is too short or the id is absent.
func reliefPoint(tu *rt.TripUpdate, pt int) string {
	trainID := gtfsrt.TrainID(tu.GetTrip())
	if trainID == "" {
		return ""
	}
	tokens := strings.Fields(trainID)
	if len(tokens) == 0 {
		return ""
	}
	points := strings.Split(tokens[len(tokens)-1], "/")
	if pt >= len(points) {
		return ""
	}
	return points[pt]
}
