package recurrence

import (
	"time"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
)

// IsDue reports whether a rule is due on the reference date. The anchor is
// the task's creation date: quarterly rules count every 3rd month from the
// anchor month and bi-annual rules every 2nd year from the anchor year.
//
// A malformed rule yields a classified recurrence error. This is a defensive
// check only; rules are validated when tasks are created.
func IsDue(rule Rule, anchor, today Date) (bool, error) {
	if err := evaluable(rule); err != nil {
		return false, err
	}

	switch rule.Frequency {
	case FreqDaily:
		return true, nil

	case FreqWeekly:
		wd, _ := ParseWeekday(rule.Day)
		return today.Weekday() == wd, nil

	case FreqMonthly:
		return today.Day == ClampDay(rule.Date, today.Year, today.Month), nil

	case FreqQuarterly:
		months := monthsBetween(anchor, today)
		if months < 0 || months%3 != 0 {
			return false, nil
		}
		return today.Day == ClampDay(rule.Date, today.Year, today.Month), nil

	case FreqAnnually:
		return onAnnualDate(rule, today), nil

	case FreqBiAnnually:
		years := today.Year - anchor.Year
		if years < 0 || years%2 != 0 {
			return false, nil
		}
		return onAnnualDate(rule, today), nil
	}

	return false, invalidRule(rule, "unsupported frequency")
}

// NextDue returns the first date strictly after the given date on which the
// rule is due. Display only; the daily runner never calls this.
func NextDue(rule Rule, anchor, after Date) (Date, error) {
	if err := evaluable(rule); err != nil {
		return Date{}, err
	}

	// Bi-annual rules have the longest gap: at most 2 years plus the clamping
	// slack. Walking day by day is bounded and keeps one code path honest for
	// all six frequencies.
	const horizon = 2*366 + 31
	d := after
	for i := 0; i < horizon; i++ {
		d = d.AddDays(1)
		due, err := IsDue(rule, anchor, d)
		if err != nil {
			return Date{}, err
		}
		if due {
			return d, nil
		}
	}
	return Date{}, invalidRule(rule, "no due date within evaluation horizon")
}

// evaluable is the defensive re-validation performed at evaluation time.
func evaluable(rule Rule) error {
	if result := rule.Validate(); !result.Valid {
		return invalidRule(rule, result.Errors[0].Message)
	}
	return nil
}

func invalidRule(rule Rule, msg string) error {
	return errors.RecurrenceError(msg).
		WithContext("frequency", string(rule.Frequency)).
		Build()
}

func onAnnualDate(rule Rule, today Date) bool {
	if today.Month != time.Month(rule.Month) {
		return false
	}
	return today.Day == ClampDay(rule.Date, today.Year, today.Month)
}

// monthsBetween counts whole calendar months from a to b, ignoring days.
func monthsBetween(a, b Date) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}
