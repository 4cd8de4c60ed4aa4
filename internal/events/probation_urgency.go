package events

import "time"

const (
	ProbationUrgencyTopic = "hr.probation.urgency.v1"
	ProbationUrgencyType  = "probation_urgency"
)

type ProbationUrgencyEvent struct {
	EventType     string    `json:"event_type"`
	CompanyID     string    `json:"company_id"`
	EmployeeID    string    `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	ManagerID     string    `json:"manager_id,omitempty"`
	EndDate       string    `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"`
	UrgencyLevel  string    `json:"urgency_level"`
	OccurredAt    time.Time `json:"occurred_at"`
}
