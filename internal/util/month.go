package util

import (
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
)

// CalendarDate returns UTC midnight of t's calendar day in t's own location.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseISODate parses a YYYY-MM-DD string into a calendar date.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(domain.ISODateLayout, s)
}

// ISODay formats the calendar day of t as YYYY-MM-DD.
func ISODay(t time.Time) string {
	return t.Format(domain.ISODateLayout)
}

// InSameMonth reports whether the calendar date falls in the month and year
// of now, read in now's location.
func InSameMonth(date, now time.Time) bool {
	return date.Year() == now.Year() && date.Month() == now.Month()
}

// MonthBounds returns the first and last calendar day of now's month as
// YYYY-MM-DD strings.
func MonthBounds(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return ISODay(first), ISODay(last)
}
