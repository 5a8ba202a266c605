package gtfs

import (
	"fmt"
	"time"
)

// ServiceDate identifies the operating day a trip runs on. A service day can
// extend past midnight, so a ServiceDate is not the same thing as the
// calendar date of an observation.
type ServiceDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewServiceDate returns the service date of t in t's location.
func NewServiceDate(t time.Time) ServiceDate {
	y, m, d := t.Date()
	return ServiceDate{Year: y, Month: m, Day: d}
}

// ParseServiceDate parses a YYYYMMDD string.
func ParseServiceDate(s string) (ServiceDate, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return ServiceDate{}, fmt.Errorf("bad service date %q: %w", s, err)
	}
	return NewServiceDate(t), nil
}

// String returns the date in YYYYMMDD form.
func (sd ServiceDate) String() string {
	return fmt.Sprintf("%04d%02d%02d", sd.Year, int(sd.Month), sd.Day)
}

// Midnight returns the start of the service date in loc. Go normalizes
// out-of-range days, which also makes Previous/Next cheap.
func (sd ServiceDate) Midnight(loc *time.Location) time.Time {
	return time.Date(sd.Year, sd.Month, sd.Day, 0, 0, 0, 0, loc)
}

// Previous returns the preceding service date.
func (sd ServiceDate) Previous() ServiceDate {
	return NewServiceDate(time.Date(sd.Year, sd.Month, sd.Day-1, 12, 0, 0, 0, time.UTC))
}

// Next returns the following service date.
func (sd ServiceDate) Next() ServiceDate {
	return NewServiceDate(time.Date(sd.Year, sd.Month, sd.Day+1, 12, 0, 0, 0, time.UTC))
}

// Weekday returns the day of week of the service date.
func (sd ServiceDate) Weekday() time.Weekday {
	return time.Date(sd.Year, sd.Month, sd.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// Compare orders service dates chronologically: -1, 0 or 1.
func (sd ServiceDate) Compare(other ServiceDate) int {
	a := sd.Year*10000 + int(sd.Month)*100 + sd.Day
	b := other.Year*10000 + int(other.Month)*100 + other.Day
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
