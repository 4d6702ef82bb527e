package validity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDateUnparseable marks a date string no supported layout could parse.
// It is recoverable: callers surface it as an invalid result, never a failure.
var ErrDateUnparseable = errors.New("date unparseable")

// dateLayouts is the fixed trial order for free-form signature dates. The
// first layout that parses wins; US month-first forms are tried before the
// day-first forms, so "02/03/2024" reads as February 3rd. Each zero-padded
// layout is followed by its non-padded variant, since time.Parse with a
// padded layout rejects single-digit fields like "1/5/2024".
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"1-2-2006",
	"01-02-06",
	"1-2-06",
	"2006-01-02",
	"2006-1-2",
	"06-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006.01.02",
	"2006.1.2",
	"January 2, 2006",
}

// ParseFlexibleDate parses a signature date from OCR or vision output, trying
// each supported layout in order.
func ParseFlexibleDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string: %w", ErrDateUnparseable)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no supported layout matches %q: %w", s, ErrDateUnparseable)
}

// daysBetween counts whole days from one instant to another, truncating any
// partial day toward zero.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// addMonthsClamped adds calendar months with month-end clamping: Jan 31 plus
// one month lands on the last day of February, not March 2nd. This differs
// deliberately from time.AddDate, which normalizes overflow days forward.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := year*12 + int(month) - 1 + months
	y, m := total/12, time.Month(total%12+1)
	if last := daysInMonth(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// formatDate renders dates the way the rest of the pipeline reports them.
func formatDate(t time.Time) string {
	return t.Format("01/02/2006")
}
