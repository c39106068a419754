package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the YYYYMMDD form used on the command line, in source-tree
// directory names, and in artifact filenames.
const DateLayout = "20060102"

// Window is a trailing span of calendar days, inclusive of both ends.
// Start and End are midnight UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds the window of lengthDays calendar days (end minus start)
// ending on end. A lengthDays of 15 therefore spans 16 dates inclusive.
func NewWindow(end time.Time, lengthDays int) Window {
	end = DateOnly(end)
	return Window{Start: end.AddDate(0, 0, -lengthDays), End: end}
}

// Days returns every date in the window in ascending order, both ends
// included. The merge step depends on this ordering.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String renders the window as "YYYYMMDD..YYYYMMDD" for logs and diagnostics.
func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseReferenceDate parses a YYYYMMDD reference date argument.
func ParseReferenceDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q (want YYYYMMDD): %w", s, err)
	}
	return t, nil
}

// AlignToWeekday returns the nearest occurrence of target on or before ref.
// When ref already falls on target it is returned unchanged, so the result is
// always within six days of ref.
func AlignToWeekday(ref time.Time, target time.Weekday) time.Time {
	ref = DateOnly(ref)
	back := (int(ref.Weekday()) - int(target) + 7) % 7
	return ref.AddDate(0, 0, -back)
}

// ResolveEndDates computes the window end dates to process for a reference
// date: the weekday-aligned anchor plus count-1 preceding weekly occurrences,
// newest first. The operational configuration uses count=1; the orchestrator
// runs one job per returned date.
func ResolveEndDates(ref time.Time, target time.Weekday, count int) []time.Time {
	anchor := AlignToWeekday(ref, target)
	dates := make([]time.Time, count)
	for i := range dates {
		dates[i] = anchor.AddDate(0, 0, -7*i)
	}
	return dates
}

// ParseWeekday maps a case-insensitive English weekday name ("thursday") to
// its time.Weekday value.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
