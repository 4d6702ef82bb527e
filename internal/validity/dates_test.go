package validity

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlexibleDateLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/15/24", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01-15-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01-15-24", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"24-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024.01.15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"January 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"1/5/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"1/5/24", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"1-5-2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-1-5", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"  06/01/2024  ", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseFlexibleDate(c.raw)
		if err != nil {
			t.Fatalf("ParseFlexibleDate(%q): %v", c.raw, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("ParseFlexibleDate(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestParseFlexibleDateMonthFirstWinsTryOrder(t *testing.T) {
	// Both MM/DD and DD/MM layouts could parse 02/03/2024; the month-first
	// layout is earlier in the trial order and must win.
	got, err := ParseFlexibleDate("02/03/2024")
	if err != nil {
		t.Fatal(err)
	}
	if got.Month() != time.February || got.Day() != 3 {
		t.Fatalf("expected February 3, got %v", got)
	}

	// Single-digit fields get the same month-first treatment.
	got, err = ParseFlexibleDate("2/3/2024")
	if err != nil {
		t.Fatal(err)
	}
	if got.Month() != time.February || got.Day() != 3 {
		t.Fatalf("expected February 3, got %v", got)
	}
}

func TestParseFlexibleDateDayFirstFallback(t *testing.T) {
	// 25 is not a valid month, so the day-first layout is the first to accept it.
	got, err := ParseFlexibleDate("25/03/2024")
	if err != nil {
		t.Fatal(err)
	}
	if got.Month() != time.March || got.Day() != 25 {
		t.Fatalf("expected March 25, got %v", got)
	}
}

func TestParseFlexibleDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "13/45/2024", "not a date", "2024/13/45"} {
		if _, err := ParseFlexibleDate(raw); !errors.Is(err, ErrDateUnparseable) {
			t.Fatalf("ParseFlexibleDate(%q): expected ErrDateUnparseable, got %v", raw, err)
		}
	}
}

func TestAddMonthsClampedMonthEnd(t *testing.T) {
	cases := []struct {
		start  time.Time
		months int
		want   time.Time
	}{
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 6, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 12, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC), 15, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got := addMonthsClamped(c.start, c.months)
		if !got.Equal(c.want) {
			t.Fatalf("addMonthsClamped(%v, %d) = %v, want %v", c.start, c.months, got, c.want)
		}
	}
}

func TestDaysBetweenTruncates(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	if got := daysBetween(from, to); got != 1 {
		t.Fatalf("daysBetween = %d, want 1 (partial day truncated)", got)
	}
	if got := daysBetween(to, from); got != -1 {
		t.Fatalf("reverse daysBetween = %d, want -1", got)
	}
}
