package duration

import "time"

type ProbationWindow struct {
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	TotalProbationDays int       `json:"total_probation_days"`
	DaysCompleted      int       `json:"days_completed"`
	DaysRemaining      int       `json:"days_remaining"`
	ProgressPercent    int       `json:"progress_percent"`
	UrgencyLevel       Urgency   `json:"urgency_level"`
	Ended              bool      `json:"ended"`
}

// ComputeProbationWindow derives the window as seen at now.
// DaysCompleted is clamped to [0, total] and DaysRemaining to >= 0; Ended
// reports that the end date has passed.
func ComputeProbationWindow(startDate time.Time, totalProbationDays int, now time.Time) ProbationWindow {
	if totalProbationDays < 0 {
		totalProbationDays = 0
	}
	start := Normalize(startDate)
	end := AddDays(start, totalProbationDays)

	completed := DaysCompleted(start, now)
	if completed < 0 {
		completed = 0
	}
	if completed > totalProbationDays {
		completed = totalProbationDays
	}

	remaining := DaysRemaining(now, end)
	ended := remaining <= 0
	if remaining < 0 {
		remaining = 0
	}

	return ProbationWindow{
		StartDate:          start,
		EndDate:            end,
		TotalProbationDays: totalProbationDays,
		DaysCompleted:      completed,
		DaysRemaining:      remaining,
		ProgressPercent:    ProgressPercent(completed, totalProbationDays),
		UrgencyLevel:       UrgencyLevel(remaining),
		Ended:              ended,
	}
}
