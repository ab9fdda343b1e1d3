package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyIgnoresCallerZone(t *testing.T) {
	// 2025-03-10 02:30 in the center zone expressed from three different
	// caller zones. All represent the same instant.
	instant := time.Date(2025, 3, 10, 2, 30, 0, 0, CenterZone)

	newYork := time.FixedZone("UTC-5", -5*60*60)
	tokyo := time.FixedZone("UTC+9", 9*60*60)

	assert.Equal(t, "2025-03-10", DateKey(instant))
	assert.Equal(t, "2025-03-10", DateKey(instant.In(newYork)))
	assert.Equal(t, "2025-03-10", DateKey(instant.In(tokyo)))
	assert.Equal(t, "2025-03-10", DateKey(instant.UTC()))
}

func TestDateKeyCrossesMidnightBoundary(t *testing.T) {
	// 17:30 UTC on 2025-03-09 is 01:30 on 2025-03-10 in the center zone.
	utcEvening := time.Date(2025, 3, 9, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", DateKey(utcEvening))
	assert.False(t, SameDay(utcEvening, time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 1, 0, 0, 0, CenterZone)
	night := time.Date(2025, 6, 1, 23, 59, 0, 0, CenterZone)
	nextDay := time.Date(2025, 6, 2, 0, 1, 0, 0, CenterZone)

	assert.True(t, SameDay(morning, night))
	assert.False(t, SameDay(night, nextDay))
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	parsed, err := ParseDateKey("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", DateKey(parsed))
	assert.Equal(t, CenterZone.String(), parsed.Location().String())
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 30, DaysInMonth(2025, time.April))
	assert.Equal(t, 31, DaysInMonth(2025, time.March))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
}

func TestStartOfMonth(t *testing.T) {
	mid := time.Date(2025, 7, 19, 15, 4, 0, 0, time.UTC)
	start := StartOfMonth(mid)
	assert.Equal(t, "2025-07-01", DateKey(start))
	assert.Equal(t, 0, start.Hour())
}
