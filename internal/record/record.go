// Package record projects ad-hoc requests and pre-registered schedules into
// one timeline shape. It never mutates its inputs.
package record

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type RecordType string

const (
	TypeRequest  RecordType = "request"
	TypeSchedule RecordType = "schedule"
)

type SortKey string

const (
	SortByDate      SortKey = "date"
	SortByName      SortKey = "name"
	SortByMagnitude SortKey = "magnitude"
)

func ParseSortKey(v string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(v))) {
	case "", SortByDate:
		return SortByDate, nil
	case SortByName:
		return SortByName, nil
	case SortByMagnitude:
		return SortByMagnitude, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", v)
	}
}

// RequestSource is an ad-hoc request, e.g. a one-off leave application.
type RequestSource struct {
	ID           string
	EmployeeName string
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	TotalDays    int
	Status       string
	Editable     bool
}

// ScheduleSource is a pre-registered schedule with a bounded edit quota.
type ScheduleSource struct {
	ID           string
	EmployeeName string
	Category     string
	Periods      []Period
	Status       string
	EditCount    int
	MaxEdits     int
	Locked       bool
}

type Period struct {
	Start time.Time
	End   time.Time
	Days  int
}

type UnifiedRecord struct {
	RecordType     RecordType `json:"record_type"`
	ID             string     `json:"id"`
	EmployeeName   string     `json:"employee_name"`
	LeaveType      string     `json:"leave_type"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Days           int        `json:"days"`
	Status         string     `json:"status"`
	CanEdit        bool       `json:"can_edit"`
	EditsRemaining *int       `json:"edits_remaining,omitempty"`
}

func FromRequest(r RequestSource) UnifiedRecord {
	return UnifiedRecord{
		RecordType:   TypeRequest,
		ID:           r.ID,
		EmployeeName: r.EmployeeName,
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Days:         r.TotalDays,
		Status:       r.Status,
		CanEdit:      r.Editable,
	}
}

// FromSchedule spans all periods: earliest start, latest end, summed days.
func FromSchedule(s ScheduleSource) UnifiedRecord {
	rec := UnifiedRecord{
		RecordType:   TypeSchedule,
		ID:           s.ID,
		EmployeeName: s.EmployeeName,
		LeaveType:    s.Category,
		Status:       s.Status,
	}
	for i, p := range s.Periods {
		if i == 0 || p.Start.Before(rec.StartDate) {
			rec.StartDate = p.Start
		}
		if i == 0 || p.End.After(rec.EndDate) {
			rec.EndDate = p.End
		}
		rec.Days += p.Days
	}

	remaining := s.MaxEdits - s.EditCount
	if remaining < 0 {
		remaining = 0
	}
	rec.EditsRemaining = &remaining
	rec.CanEdit = !s.Locked && remaining > 0
	return rec
}

// Unify merges both sources and sorts them stably by key; ties keep
// insertion order, requests before schedules. Either input may be empty.
func Unify(requests []RequestSource, schedules []ScheduleSource, key SortKey, desc bool) []UnifiedRecord {
	out := make([]UnifiedRecord, 0, len(requests)+len(schedules))
	for _, r := range requests {
		out = append(out, FromRequest(r))
	}
	for _, s := range schedules {
		out = append(out, FromSchedule(s))
	}

	less := lessFor(key)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFor(key SortKey) func(a, b UnifiedRecord) bool {
	switch key {
	case SortByName:
		return func(a, b UnifiedRecord) bool {
			return strings.ToLower(a.EmployeeName) < strings.ToLower(b.EmployeeName)
		}
	case SortByMagnitude:
		return func(a, b UnifiedRecord) bool { return a.Days < b.Days }
	default:
		return func(a, b UnifiedRecord) bool { return a.StartDate.Before(b.StartDate) }
	}
}

type Predicate func(UnifiedRecord) bool

// Filter keeps records matching every predicate, preserving order.
func Filter(records []UnifiedRecord, preds ...Predicate) []UnifiedRecord {
	out := make([]UnifiedRecord, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

func WithType(t RecordType) Predicate {
	return func(r UnifiedRecord) bool { return r.RecordType == t }
}

func WithStatus(status string) Predicate {
	return func(r UnifiedRecord) bool { return strings.EqualFold(r.Status, status) }
}
