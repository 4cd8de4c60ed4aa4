package duration_test

import (
	"testing"
	"time"

	"go-hrflow/internal/duration"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	t.Run("truncates to utc midnight", func(t *testing.T) {
		in := time.Date(2026, 3, 10, 17, 45, 12, 99, time.UTC)
		assert.Equal(t, date(2026, 3, 10), duration.Normalize(in))
	})

	t.Run("uses the utc calendar date of zoned times", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*3600)
		// 02:00 local on the 11th is still the 10th in UTC
		in := time.Date(2026, 3, 11, 2, 0, 0, 0, jakarta)
		assert.Equal(t, date(2026, 3, 10), duration.Normalize(in))
	})

	t.Run("zoned and utc inputs give the same day count", func(t *testing.T) {
		newYork := time.FixedZone("EST", -5*3600)
		a := time.Date(2026, 1, 1, 22, 0, 0, 0, newYork) // 2026-01-02 03:00 UTC
		b := date(2026, 1, 12)
		assert.Equal(t, 10, duration.DaysBetween(a, b))
		assert.Equal(t, 10, duration.DaysBetween(a.UTC(), b))
	})
}

func TestDaysRemainingAndCompleted(t *testing.T) {
	start := date(2026, 1, 1)
	end := duration.AddDays(start, 90)

	t.Run("remaining rounds up", func(t *testing.T) {
		now := end.Add(-12 * time.Hour)
		assert.Equal(t, 1, duration.DaysRemaining(now, end))
	})

	t.Run("completed rounds down", func(t *testing.T) {
		now := start.Add(89*24*time.Hour + 12*time.Hour)
		assert.Equal(t, 89, duration.DaysCompleted(start, now))
	})

	t.Run("whole days agree", func(t *testing.T) {
		now := start.Add(30 * 24 * time.Hour)
		assert.Equal(t, 30, duration.DaysCompleted(start, now))
		assert.Equal(t, 60, duration.DaysRemaining(now, end))
	})

	t.Run("remaining goes negative after the end", func(t *testing.T) {
		now := end.Add(36 * time.Hour)
		assert.Equal(t, -1, duration.DaysRemaining(now, end))
	})
}

func TestInclusiveDaysAndNotice(t *testing.T) {
	assert.Equal(t, 1, duration.InclusiveDays(date(2026, 5, 10), date(2026, 5, 10)))
	assert.Equal(t, 5, duration.InclusiveDays(date(2026, 5, 11), date(2026, 5, 15)))
	assert.Equal(t, date(2026, 2, 28), duration.NoticePeriodEnd(time.Date(2026, 1, 29, 15, 0, 0, 0, time.UTC), 30))
	assert.Equal(t, date(2026, 1, 29), duration.NoticePeriodEnd(date(2026, 1, 29), -3))
}

func TestUrgencyLevel(t *testing.T) {
	cases := []struct {
		remaining int
		want      duration.Urgency
	}{
		{-3, duration.UrgencyCritical},
		{0, duration.UrgencyCritical},
		{7, duration.UrgencyCritical},
		{8, duration.UrgencyWarning},
		{14, duration.UrgencyWarning},
		{15, duration.UrgencyAttention},
		{30, duration.UrgencyAttention},
		{31, duration.UrgencyNormal},
		{365, duration.UrgencyNormal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, duration.UrgencyLevel(tc.remaining), "days remaining %d", tc.remaining)
	}
}

func TestUrgencyRank(t *testing.T) {
	assert.Less(t, duration.UrgencyCritical.Rank(), duration.UrgencyWarning.Rank())
	assert.Less(t, duration.UrgencyWarning.Rank(), duration.UrgencyAttention.Rank())
	assert.Less(t, duration.UrgencyAttention.Rank(), duration.UrgencyNormal.Rank())
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, duration.ProgressPercent(10, 0))
	assert.Equal(t, 0, duration.ProgressPercent(10, -5))
	assert.Equal(t, 0, duration.ProgressPercent(-1, 90))
	assert.Equal(t, 50, duration.ProgressPercent(45, 90))
	assert.Equal(t, 99, duration.ProgressPercent(89, 90))
	assert.Equal(t, 33, duration.ProgressPercent(1, 3))
	assert.Equal(t, 67, duration.ProgressPercent(2, 3))
	assert.Equal(t, 100, duration.ProgressPercent(90, 90))
	assert.Equal(t, 100, duration.ProgressPercent(120, 90))
}

func TestComputeProbationWindow(t *testing.T) {
	start := date(2026, 1, 1)

	t.Run("twelve hours into the last day", func(t *testing.T) {
		now := start.Add(89*24*time.Hour + 12*time.Hour)

		w := duration.ComputeProbationWindow(start, 90, now)

		assert.Equal(t, duration.AddDays(start, 90), w.EndDate)
		assert.Equal(t, 89, w.DaysCompleted)
		assert.Equal(t, 1, w.DaysRemaining)
		assert.Equal(t, 99, w.ProgressPercent)
		assert.Equal(t, duration.UrgencyCritical, w.UrgencyLevel)
		assert.False(t, w.Ended)
	})

	t.Run("start date with a time component is normalized", func(t *testing.T) {
		now := date(2026, 1, 11)

		w := duration.ComputeProbationWindow(start.Add(20*time.Hour), 90, now)

		assert.Equal(t, start, w.StartDate)
		assert.Equal(t, 10, w.DaysCompleted)
		assert.Equal(t, 80, w.DaysRemaining)
		assert.Equal(t, duration.UrgencyNormal, w.UrgencyLevel)
	})

	t.Run("before start", func(t *testing.T) {
		w := duration.ComputeProbationWindow(start, 30, start.Add(-48*time.Hour))

		assert.Equal(t, 0, w.DaysCompleted)
		assert.Equal(t, 32, w.DaysRemaining)
		assert.Equal(t, 0, w.ProgressPercent)
	})

	t.Run("after end is clamped", func(t *testing.T) {
		w := duration.ComputeProbationWindow(start, 30, date(2026, 3, 1))

		assert.Equal(t, 30, w.DaysCompleted)
		assert.Equal(t, 0, w.DaysRemaining)
		assert.Equal(t, 100, w.ProgressPercent)
		assert.True(t, w.Ended)
	})

	t.Run("zero length window", func(t *testing.T) {
		w := duration.ComputeProbationWindow(start, 0, start.Add(time.Hour))

		assert.Equal(t, 0, w.ProgressPercent)
		assert.Equal(t, 0, w.DaysRemaining)
		assert.True(t, w.Ended)
	})
}

func TestProbationTable(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		table, err := duration.ParseProbationTable([]byte("default_days: 90\ncontracts:\n  permanent: 90\n  Fixed_Term: 60\n"))

		assert.NoError(t, err)
		assert.Equal(t, 60, table.DaysFor("FIXED_TERM"))
		assert.Equal(t, 90, table.DaysFor(" permanent "))
		assert.Equal(t, 90, table.DaysFor("UNKNOWN"))
	})

	t.Run("negative days rejected", func(t *testing.T) {
		_, err := duration.ParseProbationTable([]byte("default_days: 90\ncontracts:\n  INTERNSHIP: -1\n"))
		assert.Error(t, err)
	})

	t.Run("negative malformed yaml", func(t *testing.T) {
		_, err := duration.ParseProbationTable([]byte("contracts: [1, 2"))
		assert.Error(t, err)
	})

	t.Run("load shipped config", func(t *testing.T) {
		table, err := duration.LoadProbationTable("../../config/probation.yaml")

		assert.NoError(t, err)
		assert.Equal(t, 180, table.DaysFor("EXECUTIVE"))
	})
}
