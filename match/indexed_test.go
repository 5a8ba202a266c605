package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitforge/railproxy/trip"
)

func middayWindow() Window {
	midnight := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	return Window{
		Start:    midnight.Add(38000 * time.Second),
		End:      midnight.Add(39000 * time.Second),
		RouteIDs: map[string]bool{"1": true},
	}
}

func indexedMatch(t *testing.T, m *IndexedMatcher, tripID string) *Result {
	t.Helper()
	tu := newTU(tripID, "1")
	id, parsed := trip.Parse(tripID)
	return m.Match(tu, id, parsed, sundayNoon())
}

func TestIndexedStrictMatch(t *testing.T) {
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	m.InitForWindow(middayWindow())

	r := indexedMatch(t, m, "063600_1..S03R")
	assert.Equal(t, StatusStrictMatch, r.Status)
	require.True(t, r.HasTrip())
	assert.Equal(t, "AFA23GEN-1038-Sunday-00_063600_1..S03R", r.Trip.Trip.ID)
}

func TestIndexedCoercedMatch(t *testing.T) {
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	m.InitForWindow(middayWindow())

	r := indexedMatch(t, m, "063800_1..S")
	assert.Equal(t, StatusLooseMatchCoerced, r.Status)
	require.True(t, r.HasTrip())
	assert.Equal(t, "AFA23GEN-1038-Sunday-00_063600_1..S03R", r.Trip.Trip.ID)
	assert.Equal(t, 120, r.Lateness)
}

func TestIndexedNoMatchOutsideLateLimit(t *testing.T) {
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	m.InitForWindow(middayWindow())

	r := indexedMatch(t, m, "099999_1..S")
	assert.Equal(t, StatusNoMatch, r.Status)
}

func TestIndexedNoTripWithStartDate(t *testing.T) {
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	m.InitForWindow(middayWindow())

	r := indexedMatch(t, m, "063600_1..N03R")
	assert.Equal(t, StatusNoTripWithStartDate, r.Status)
}

func TestIndexedBadTripID(t *testing.T) {
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	m.InitForWindow(middayWindow())

	r := m.Match(newTU("garbage", "1"), trip.Identity{}, false, sundayNoon())
	assert.Equal(t, StatusBadTripID, r.Status)
}

func TestIndexedPreviousDayLookback(t *testing.T) {
	// A window just past midnight must pick up the Saturday trip that is
	// still running, shifted onto Saturday's >24h clock.
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	midnight := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	m.InitForWindow(Window{
		Start:    midnight.Add(600 * time.Second),
		End:      midnight.Add(1200 * time.Second),
		RouteIDs: map[string]bool{"1": true},
	})

	tu := newTU("000200_1..S03R", "1")
	id, parsed := trip.Parse("000200_1..S03R")
	ts := midnight.Add(600 * time.Second).Unix()
	r := m.Match(tu, id, parsed, ts)
	assert.Equal(t, StatusStrictMatch, r.Status)
	require.True(t, r.HasTrip())
	assert.Equal(t, "AFA23GEN-1038-Saturday-00_144200_1..S03R", r.Trip.Trip.ID)
	assert.Equal(t, "20240601", r.Trip.ServiceDate.String())
}

func TestIndexedWindowExcludesOtherRoutes(t *testing.T) {
	m := NewIndexedMatcher(newTestStore(), time.UTC, Options{}, nil)
	midnight := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	m.InitForWindow(Window{
		Start:    midnight.Add(38000 * time.Second),
		End:      midnight.Add(39000 * time.Second),
		RouteIDs: map[string]bool{"7": true},
	})

	r := indexedMatch(t, m, "063600_1..S03R")
	assert.Equal(t, StatusNoTripWithStartDate, r.Status)
}

func TestActivatorDerivedLookback(t *testing.T) {
	a := NewActivator(newTestStore(), time.UTC, 0)
	// The longest trip spans past one midnight, so two service days must
	// be considered.
	assert.Equal(t, 2, a.maxLookback)
}
