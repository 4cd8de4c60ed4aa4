// Package duration holds the date arithmetic behind probation windows,
// notice periods and urgency buckets. Every function is pure.
//
// Calendar dates are normalized to midnight UTC before any arithmetic. The
// "now" instant is deliberately left un-normalized so that a partially
// elapsed day rounds up for days remaining and down for days completed.
package duration

import (
	"math"
	"time"
)

const day = 24 * time.Hour

type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyAttention Urgency = "attention"
	UrgencyWarning   Urgency = "warning"
	UrgencyCritical  Urgency = "critical"
)

// Urgency thresholds in days remaining, inclusive.
const (
	CriticalWithinDays  = 7
	WarningWithinDays   = 14
	AttentionWithinDays = 30
)

// Normalize truncates t to midnight UTC of its UTC calendar date.
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns the normalized date n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

// DaysBetween counts whole calendar days from a to b after normalization.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)) / day)
}

// DaysRemaining rounds up: a partially elapsed day still counts as remaining.
func DaysRemaining(now, end time.Time) int {
	return int(math.Ceil(Normalize(end).Sub(now).Hours() / 24))
}

// DaysCompleted rounds down: a partially elapsed day is not complete.
func DaysCompleted(start, now time.Time) int {
	return int(math.Floor(now.Sub(Normalize(start)).Hours() / 24))
}

// InclusiveDays counts both endpoints, so a single-day leave is 1.
func InclusiveDays(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

// NoticePeriodEnd is the last working day for a notice given on submittedAt.
func NoticePeriodEnd(submittedAt time.Time, noticeDays int) time.Time {
	if noticeDays < 0 {
		noticeDays = 0
	}
	return AddDays(submittedAt, noticeDays)
}

func UrgencyLevel(daysRemaining int) Urgency {
	switch {
	case daysRemaining <= CriticalWithinDays:
		return UrgencyCritical
	case daysRemaining <= WarningWithinDays:
		return UrgencyWarning
	case daysRemaining <= AttentionWithinDays:
		return UrgencyAttention
	default:
		return UrgencyNormal
	}
}

// Rank orders urgencies from most to least pressing.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyWarning:
		return 1
	case UrgencyAttention:
		return 2
	default:
		return 3
	}
}

// ProgressPercent is min(100, round(100*completed/total)); 0 when total <= 0.
func ProgressPercent(daysCompleted, totalDays int) int {
	if totalDays <= 0 || daysCompleted <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(daysCompleted) / float64(totalDays)))
	if p > 100 {
		return 100
	}
	return p
}
