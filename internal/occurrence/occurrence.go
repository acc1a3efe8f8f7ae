// Package occurrence holds the pure calendar arithmetic for recurring yearly
// dates: next-occurrence resolution, lead-time day counts, and true
// calendar-difference elapsed spans.
package occurrence

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDate is returned when a (month, day) pair can never resolve
	// to a real calendar date.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrNoOriginDate is returned when an elapsed-time figure is requested
	// for an event that has no origin year recorded.
	ErrNoOriginDate = errors.New("event has no origin year")
)

// Feb29Policy fixes where a Feb-29 event falls in non-leap years.
type Feb29Policy int

const (
	// FallbackFeb28 observes Feb-29 events on Feb 28 in non-leap years.
	FallbackFeb28 Feb29Policy = iota
	// FallbackMar1 observes Feb-29 events on Mar 1 in non-leap years.
	FallbackMar1
)

// ParseFeb29Policy parses the config string form ("feb28" or "mar1").
func ParseFeb29Policy(s string) (Feb29Policy, error) {
	switch s {
	case "", "feb28":
		return FallbackFeb28, nil
	case "mar1":
		return FallbackMar1, nil
	}
	return FallbackFeb28, fmt.Errorf("unknown feb29_fallback %q", s)
}

func (p Feb29Policy) String() string {
	if p == FallbackMar1 {
		return "mar1"
	}
	return "feb28"
}

// ValidateMonthDay reports whether (month, day) is a possible recurring
// date. Feb 29 is allowed; its yearly observance follows the Feb29Policy.
func ValidateMonthDay(month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > daysInMonth(2024, time.Month(month)) { // 2024 is a leap year, so Feb allows 29
		return fmt.Errorf("%w: %d-%d", ErrInvalidDate, month, day)
	}
	return nil
}

// Date truncates t to a calendar date at midnight UTC. All arithmetic in
// this package works on such values so day counts are exact.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Resolve places a recurring (month, day) in the given year, applying the
// Feb-29 fallback when the year is not a leap year.
func Resolve(year, month, day int, policy Feb29Policy) time.Time {
	if month == 2 && day == 29 && !isLeap(year) {
		if policy == FallbackMar1 {
			return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
		}
		return time.Date(year, time.February, 28, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Next returns the next occurrence of (month, day) on or after today,
// together with the whole-day count until it. daysUntil is 0 when today is
// the occurrence.
func Next(month, day int, today time.Time, policy Feb29Policy) (time.Time, int) {
	today = Date(today)
	occ := Resolve(today.Year(), month, day, policy)
	if occ.Before(today) {
		occ = Resolve(today.Year()+1, month, day, policy)
	}
	return occ, daysBetween(today, occ)
}

// Span is a true calendar difference between two dates.
type Span struct {
	Years     int
	Months    int
	Days      int
	TotalDays int
}

// Elapsed computes the calendar span from the origin date
// (originYear, month, day) to today. The day component borrows from the
// month preceding today's month using its actual length, then the month
// component borrows from the years.
func Elapsed(originYear, month, day int, today time.Time, policy Feb29Policy) Span {
	today = Date(today)
	origin := Resolve(originYear, month, day, policy)

	years := today.Year() - origin.Year()
	months := int(today.Month()) - int(origin.Month())
	days := today.Day() - origin.Day()

	if days < 0 {
		prevYear, prevMonth := today.Year(), today.Month()-1
		if prevMonth < time.January {
			prevYear, prevMonth = prevYear-1, time.December
		}
		days += daysInMonth(prevYear, prevMonth)
		months--
	}
	if months < 0 {
		months += 12
		years--
	}

	return Span{
		Years:     years,
		Months:    months,
		Days:      days,
		TotalDays: daysBetween(origin, today),
	}
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
