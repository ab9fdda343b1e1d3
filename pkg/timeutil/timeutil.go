package timeutil

import "time"

// CenterZone is the fixed timezone of the exam center. All calendar-day
// bucketing uses this zone so that a session lands on the same roster day no
// matter where the caller's machine is configured.
var CenterZone = time.FixedZone("UTC+8", 8*60*60)

// DateLayout is the canonical calendar-date key format.
const DateLayout = "2006-01-02"

// DateKey returns the calendar-date string for t in the center timezone.
func DateKey(t time.Time) string {
	return t.In(CenterZone).Format(DateLayout)
}

// ParseDateKey parses a canonical date key into midnight center time.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, CenterZone)
}

// SameDay reports whether two instants fall on the same calendar day in the
// center timezone.
func SameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// IsToday reports whether t falls on today's calendar day in the center
// timezone.
func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

// StartOfMonth returns midnight on the first day of the month containing t,
// in the center timezone.
func StartOfMonth(t time.Time) time.Time {
	local := t.In(CenterZone)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, CenterZone)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, CenterZone).Day()
}
