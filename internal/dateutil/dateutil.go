// Package dateutil contains the date arithmetic shared by leave request
// validation, calendar queries and balance accounting.  All leave dates in
// PowerLeave are day-granular: times of day never matter, so every helper
// normalizes its inputs to midnight before comparing.
package dateutil

import (
	"errors"
	"time"
)

// DateLayout is the canonical wire and storage format for leave dates.
// Dates are persisted as YYYY-MM-DD strings so that lexicographic
// comparison in SQL matches chronological comparison.
const DateLayout = "2006-01-02"

// HoursPerDay is the number of working hours that equals one full leave day.
const HoursPerDay = 8

// ErrInvalidDate is returned by ParseDate for inputs that are not valid
// YYYY-MM-DD calendar dates (including impossible dates like 2025-02-31).
var ErrInvalidDate = errors.New("invalid date format")

// Normalize zeroes the time-of-day components of t, anchoring it at
// midnight.  Comparisons between normalized dates are day-granular
// regardless of any timezone artifacts on the input.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD string into a normalized time.Time.
// time.Parse already rejects out-of-range components, so "2025-02-31"
// fails here rather than silently rolling over into March.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders a date as a zero-padded YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return Normalize(t).Format(DateLayout)
}

// DaysBetween returns the inclusive calendar-day span between start and
// end.  A same-day range counts as 1 day; the result is never less than 1.
func DaysBetween(start, end time.Time) int {
	s := Normalize(start)
	e := Normalize(end)
	days := int(e.Sub(s).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// RangesOverlap reports whether two inclusive date ranges share at least
// one calendar day: s1 <= e2 && s2 <= e1.  This is the single source of
// truth for conflict detection; request creation and calendar rendering
// must not re-derive the comparison.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	a1, b1 := Normalize(s1), Normalize(e1)
	a2, b2 := Normalize(s2), Normalize(e2)
	return !a1.After(b2) && !a2.After(b1)
}

// HoursToDays converts an hours-per-day quantity into its working-day
// equivalent: 8 hours = 1.0 day, 4 hours = 0.5, 2 hours = 0.25.
func HoursToDays(hours float64) float64 {
	return hours / HoursPerDay
}
