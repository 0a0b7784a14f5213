package recurrence

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component. Rules are evaluated
// against calendar dates only, so carrying a time.Time around would invite
// timezone drift between the runner and storage.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate constructs a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar date in the time's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns the date at midnight UTC. Useful for arithmetic via the
// stdlib's normalizing AddDate.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the weekday of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// String renders ISO-8601 (YYYY-MM-DD).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// DaysInMonth returns the number of days in the given month, accounting for
// leap years.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a configured day-of-month (1-31) into the given month: a
// rule with date=31 fires on February's last day.
func ClampDay(day, year int, month time.Month) int {
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}
