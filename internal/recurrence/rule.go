// Package recurrence evaluates maintenance recurrence rules against calendar
// dates: given a rule and a reference date it answers "is this task due
// today" and "when is it due next". Evaluation is pure; rules carry no
// clock or storage dependencies.
package recurrence

import (
	"time"

	"git.home.luguber.info/inful/pmtrack/internal/foundation"
)

// Frequency enumerates the supported recurrence vocabularies. This is the
// complete set; the evaluator is deliberately not a general cron engine.
type Frequency string

const (
	FreqDaily      Frequency = "daily"
	FreqWeekly     Frequency = "weekly"
	FreqMonthly    Frequency = "monthly"
	FreqQuarterly  Frequency = "quarterly"
	FreqAnnually   Frequency = "annually"
	FreqBiAnnually Frequency = "bi-annually"
)

var frequencyNormalizer = foundation.NewNormalizer(map[string]Frequency{
	string(FreqDaily):      FreqDaily,
	string(FreqWeekly):     FreqWeekly,
	string(FreqMonthly):    FreqMonthly,
	string(FreqQuarterly):  FreqQuarterly,
	string(FreqAnnually):   FreqAnnually,
	string(FreqBiAnnually): FreqBiAnnually,
}, Frequency(""))

// ParseFrequency normalizes a raw frequency string, returning an error for
// anything outside the supported vocabulary.
func ParseFrequency(raw string) (Frequency, error) {
	return frequencyNormalizer.NormalizeWithError(raw)
}

var weekdayNormalizer = foundation.NewNormalizer(map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}, time.Weekday(-1))

// ParseWeekday normalizes a raw weekday name.
func ParseWeekday(raw string) (time.Weekday, error) {
	return weekdayNormalizer.NormalizeWithError(raw)
}

// Rule describes when a recurring task is due. Which optional fields must be
// populated depends on Frequency; Validate enforces the agreement.
type Rule struct {
	Frequency Frequency `json:"frequency"`
	Day       string    `json:"day,omitempty"`   // weekday name; weekly only
	Month     int       `json:"month,omitempty"` // 1-12; annually and bi-annually
	Date      int       `json:"date,omitempty"`  // 1-31; monthly, quarterly, annually, bi-annually
}

// Validate checks field/frequency agreement. This is the primary validation
// point, invoked at task-creation time; the evaluator only re-checks
// defensively.
func (r Rule) Validate() foundation.ValidationResult {
	result := foundation.Valid()

	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return foundation.Invalid(foundation.NewFieldError(
			"frequency", "invalid", "frequency must be one of daily, weekly, monthly, quarterly, annually, bi-annually"))
	}

	switch r.Frequency {
	case FreqDaily:
		// no fields required
	case FreqWeekly:
		if _, err := ParseWeekday(r.Day); err != nil {
			result = result.Combine(foundation.Invalid(foundation.NewFieldError(
				"day", "invalid", "weekly rules require a valid weekday name")))
		}
	case FreqMonthly, FreqQuarterly:
		result = result.Combine(foundation.IntRange("date", r.Date, 1, 31))
	case FreqAnnually, FreqBiAnnually:
		result = result.Combine(foundation.IntRange("month", r.Month, 1, 12))
		result = result.Combine(foundation.IntRange("date", r.Date, 1, 31))
	}

	return result
}
