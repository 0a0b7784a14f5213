package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
)

func mustDue(t *testing.T, rule Rule, anchor, today Date) bool {
	t.Helper()
	due, err := IsDue(rule, anchor, today)
	require.NoError(t, err)
	return due
}

func TestDailyAlwaysDue(t *testing.T) {
	rule := Rule{Frequency: FreqDaily}
	anchor := NewDate(2025, time.January, 1)
	for i := 0; i < 10; i++ {
		assert.True(t, mustDue(t, rule, anchor, anchor.AddDays(i)))
	}
}

func TestWeeklyDueOnMatchingWeekdayOnly(t *testing.T) {
	// Month/date fields absent: weekly evaluation must ignore them.
	rule := Rule{Frequency: FreqWeekly, Day: "monday"}
	anchor := NewDate(2025, time.January, 1)

	// 2026-08-31 is a Monday.
	monday := NewDate(2026, time.August, 31)
	require.Equal(t, time.Monday, monday.Weekday())

	assert.True(t, mustDue(t, rule, anchor, monday))
	for i := 1; i < 7; i++ {
		assert.False(t, mustDue(t, rule, anchor, monday.AddDays(i)), "offset %d", i)
	}
	assert.True(t, mustDue(t, rule, anchor, monday.AddDays(7)))
}

func TestMonthlyClampsToFebruaryEnd(t *testing.T) {
	rule := Rule{Frequency: FreqMonthly, Date: 31}
	anchor := NewDate(2024, time.December, 1)

	// Non-leap year: due on Feb 28 and no other February day.
	for day := 1; day <= 28; day++ {
		due := mustDue(t, rule, anchor, NewDate(2025, time.February, day))
		assert.Equal(t, day == 28, due, "2025-02-%02d", day)
	}

	// Leap year: due on Feb 29 only.
	for day := 1; day <= 29; day++ {
		due := mustDue(t, rule, anchor, NewDate(2024, time.February, day))
		assert.Equal(t, day == 29, due, "2024-02-%02d", day)
	}

	// Months with 31 days fire on the configured date itself.
	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.March, 31)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.March, 30)))
}

func TestQuarterlyFromAnchorMonth(t *testing.T) {
	rule := Rule{Frequency: FreqQuarterly, Date: 15}
	anchor := NewDate(2025, time.February, 10)

	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.February, 15)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.May, 15)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.August, 15)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2026, time.February, 15)))

	// Off-cycle months are never due, even on the right day.
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.March, 15)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.April, 15)))

	// On-cycle month but wrong day.
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.May, 14)))

	// Before the anchor nothing is due.
	assert.False(t, mustDue(t, rule, anchor, NewDate(2024, time.November, 15)))
}

func TestQuarterlyClamping(t *testing.T) {
	rule := Rule{Frequency: FreqQuarterly, Date: 31}
	anchor := NewDate(2024, time.November, 5)

	// Nov -> Feb -> May cycle; February clamps to its last day.
	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.February, 28)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.February, 27)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.May, 31)))
}

func TestAnnually(t *testing.T) {
	rule := Rule{Frequency: FreqAnnually, Month: 6, Date: 30}
	anchor := NewDate(2023, time.March, 1)

	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.June, 30)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2026, time.June, 30)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.June, 29)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.July, 30)))
}

func TestAnnualClampsShortMonth(t *testing.T) {
	rule := Rule{Frequency: FreqAnnually, Month: 2, Date: 30}
	anchor := NewDate(2023, time.January, 1)

	assert.True(t, mustDue(t, rule, anchor, NewDate(2025, time.February, 28)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2028, time.February, 29)))
}

func TestBiAnnuallyEveryOtherYear(t *testing.T) {
	rule := Rule{Frequency: FreqBiAnnually, Month: 9, Date: 1}
	anchor := NewDate(2024, time.September, 1)

	assert.True(t, mustDue(t, rule, anchor, NewDate(2024, time.September, 1)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2025, time.September, 1)))
	assert.True(t, mustDue(t, rule, anchor, NewDate(2026, time.September, 1)))
	assert.False(t, mustDue(t, rule, anchor, NewDate(2022, time.September, 1)))
}

func TestIsDueRejectsMalformedRule(t *testing.T) {
	anchor := NewDate(2025, time.January, 1)
	cases := []Rule{
		{Frequency: "fortnightly"},
		{Frequency: FreqWeekly},                      // missing day
		{Frequency: FreqWeekly, Day: "someday"},      // bad weekday
		{Frequency: FreqMonthly},                     // missing date
		{Frequency: FreqMonthly, Date: 32},           // out of range
		{Frequency: FreqAnnually, Month: 13, Date: 1},
		{Frequency: FreqAnnually, Date: 10}, // missing month
	}
	for _, rule := range cases {
		_, err := IsDue(rule, anchor, anchor)
		require.Error(t, err, "rule %+v", rule)
		assert.True(t, errors.HasCategory(err, errors.CategoryRecurrence), "rule %+v", rule)
	}
}

func TestNextDue(t *testing.T) {
	anchor := NewDate(2025, time.January, 10)

	next, err := NextDue(Rule{Frequency: FreqDaily}, anchor, NewDate(2025, time.March, 3))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.March, 4), next)

	next, err = NextDue(Rule{Frequency: FreqWeekly, Day: "friday"}, anchor, NewDate(2026, time.August, 31))
	require.NoError(t, err)
	assert.Equal(t, time.Friday, next.Weekday())
	assert.Equal(t, NewDate(2026, time.September, 4), next)

	// Monthly date=31 from mid-February lands on Feb 28.
	next, err = NextDue(Rule{Frequency: FreqMonthly, Date: 31}, anchor, NewDate(2025, time.February, 10))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.February, 28), next)

	// Bi-annual: next occurrence skips the odd year.
	next, err = NextDue(Rule{Frequency: FreqBiAnnually, Month: 9, Date: 1}, NewDate(2024, time.September, 1), NewDate(2024, time.September, 1))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.September, 1), next)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("  Bi-Annually ")
	require.NoError(t, err)
	assert.Equal(t, FreqBiAnnually, f)

	_, err = ParseFrequency("hourly")
	assert.Error(t, err)
}

func TestDateHelpers(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 31, DaysInMonth(2025, time.December))
	assert.Equal(t, 30, ClampDay(31, 2025, time.April))
	assert.Equal(t, 15, ClampDay(15, 2025, time.April))

	d, err := ParseDate("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", d.String())
	assert.True(t, NewDate(2025, time.December, 31).Before(NewDate(2026, time.January, 1)))
}
