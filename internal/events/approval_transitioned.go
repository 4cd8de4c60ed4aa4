package events

import "time"

const (
	ApprovalTransitionedTopic = "hr.approval.transitioned.v1"
	ApprovalTransitionedType  = "approval_transitioned"
)

// ApprovalTransitionedEvent is published once per committed transition.
type ApprovalTransitionedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	CompanyID     string    `json:"company_id"`
	ApprovalID    string    `json:"approval_id"`
	Reference     string    `json:"reference"`
	Kind          string    `json:"kind"`
	Action        string    `json:"action"`
	ActorID       string    `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	Comment       string    `json:"comment,omitempty"`
	Status        string    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	StageIndex    int       `json:"stage_index"`
	PendingRoles  []string  `json:"pending_roles,omitempty"`
	SubjectID     string    `json:"subject_id"`
	RequesterID   string    `json:"requester_id"`
	LineManagerID string    `json:"line_manager_id,omitempty"`
	Seq           int       `json:"seq"`
	Hash          string    `json:"hash"`
	OccurredAt    time.Time `json:"occurred_at"`
}
