package dateutil

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2025-06-01", false},
		{"2024-02-29", false}, // leap day
		{"2025-02-31", true},  // impossible date must not roll over
		{"2025-13-01", true},
		{"2025-6-1", true}, // not zero-padded
		{"01-06-2025", true},
		{"2025/06/01", true},
		{"", true},
		{"garbage", true},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error %v", tc.in, err)
			continue
		}
		if FormatDate(got) != tc.in {
			t.Errorf("ParseDate(%q) round-trip = %q", tc.in, FormatDate(got))
		}
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2025-06-01", "2025-06-01", 1}, // same day counts as one
		{"2025-06-01", "2025-06-03", 3},
		{"2025-06-01", "2025-06-30", 30},
		{"2024-02-28", "2024-03-01", 3}, // across leap day
		{"2025-12-30", "2026-01-02", 4}, // across year end
		{"2025-06-03", "2025-06-01", 1}, // inverted range clamps to 1
	}
	for _, tc := range cases {
		if got := DaysBetween(date(tc.start), date(tc.end)); got != tc.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                   string
		s1, e1, s2, e2         string
		want                   bool
	}{
		{"identical", "2025-06-01", "2025-06-05", "2025-06-01", "2025-06-05", true},
		{"contained", "2025-06-01", "2025-06-30", "2025-06-10", "2025-06-12", true},
		{"partial", "2025-06-01", "2025-06-10", "2025-06-08", "2025-06-15", true},
		{"touching end", "2025-06-01", "2025-06-05", "2025-06-05", "2025-06-08", true},
		{"touching start", "2025-06-05", "2025-06-08", "2025-06-01", "2025-06-05", true},
		{"single day inside", "2025-06-01", "2025-06-05", "2025-06-03", "2025-06-03", true},
		{"adjacent", "2025-06-01", "2025-06-05", "2025-06-06", "2025-06-08", false},
		{"disjoint", "2025-06-01", "2025-06-05", "2025-07-01", "2025-07-05", false},
		{"disjoint reversed", "2025-07-01", "2025-07-05", "2025-06-01", "2025-06-05", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RangesOverlap(date(tc.s1), date(tc.e1), date(tc.s2), date(tc.e2))
			if got != tc.want {
				t.Errorf("RangesOverlap = %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if sym := RangesOverlap(date(tc.s2), date(tc.e2), date(tc.s1), date(tc.e1)); sym != got {
				t.Errorf("RangesOverlap not symmetric: %v vs %v", got, sym)
			}
		})
	}
}

func TestHoursToDays(t *testing.T) {
	cases := []struct {
		hours float64
		want  float64
	}{
		{8, 1},
		{4, 0.5},
		{2, 0.25},
		{12, 1.5},
		{0, 0},
	}
	for _, tc := range cases {
		if got := HoursToDays(tc.hours); got != tc.want {
			t.Errorf("HoursToDays(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := time.Date(2025, 6, 15, 23, 59, 58, 123, time.UTC)
	got := Normalize(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("Normalize left time-of-day components: %v", got)
	}
	if got.Year() != 2025 || got.Month() != 6 || got.Day() != 15 {
		t.Errorf("Normalize changed the calendar day: %v", got)
	}
}
