// Package gtfs loads a static GTFS schedule into an immutable in-memory
// index and exposes the narrow ScheduleStore interface the matchers consume:
// trips by route, stop times by trip, calendar service membership by date.
//
// The index is built once at startup and never mutated afterwards, so it is
// safe for unsynchronized concurrent reads from multiple feed reconcilers.
package gtfs
