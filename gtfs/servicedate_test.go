package gtfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceDate(t *testing.T) {
	sd, err := ParseServiceDate("20240602")
	require.NoError(t, err)
	assert.Equal(t, ServiceDate{Year: 2024, Month: time.June, Day: 2}, sd)
	assert.Equal(t, "20240602", sd.String())

	_, err = ParseServiceDate("2024-06-02")
	assert.Error(t, err)
	_, err = ParseServiceDate("")
	assert.Error(t, err)
}

func TestServiceDatePreviousNext(t *testing.T) {
	sd := ServiceDate{Year: 2024, Month: time.March, Day: 1}
	assert.Equal(t, "20240229", sd.Previous().String(), "leap year rollback")
	assert.Equal(t, "20240302", sd.Next().String())

	eoy := ServiceDate{Year: 2023, Month: time.December, Day: 31}
	assert.Equal(t, "20240101", eoy.Next().String())
}

func TestServiceDateWeekday(t *testing.T) {
	sd := ServiceDate{Year: 2024, Month: time.June, Day: 2}
	assert.Equal(t, time.Sunday, sd.Weekday())
}

func TestServiceDateCompare(t *testing.T) {
	a := ServiceDate{Year: 2024, Month: time.June, Day: 2}
	b := ServiceDate{Year: 2024, Month: time.June, Day: 3}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestServiceDateMidnight(t *testing.T) {
	sd := ServiceDate{Year: 2024, Month: time.June, Day: 2}
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), sd.Midnight(time.UTC))
}
