package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingStart marks an event without a usable DTSTART.
	ErrMissingStart = errors.New("event has no start")
	// ErrMissingSummary marks an event without a SUMMARY.
	ErrMissingSummary = errors.New("event has no summary")
)

// RawEvent is one VEVENT as read from the calendar feed, before any pay
// metadata has been extracted.
type RawEvent struct {
	UID string

	Summary     string
	Description string

	// AllDay is set when DTSTART carries no time-of-day. Start is then
	// midnight of that date in the reference zone.
	AllDay bool

	Start time.Time
	End   time.Time
}

// Date is a calendar date with no time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return other.After(d)
}

func (d Date) String() string {
	return d.In(time.UTC).Format("2006-01-02")
}

// Shift is one normalized calendar entry: either a worked, timed shift or an
// all-day marker (typically a payday).
type Shift struct {
	Start    time.Time
	End      time.Time
	AllDay   bool
	Duration time.Duration

	// Income and Tips are invalid when the description carried no usable value.
	Income decimal.NullDecimal
	Tips   decimal.NullDecimal

	Project     string
	Description string

	// Paid is the date the shift's income was received. Nil until resolved.
	Paid *Date
}

// StartDate is the calendar date the shift starts on.
func (s Shift) StartDate() Date {
	return DateOf(s.Start)
}

// IsPaid reports whether a paid date has been assigned.
func (s Shift) IsPaid() bool {
	return s.Paid != nil
}
