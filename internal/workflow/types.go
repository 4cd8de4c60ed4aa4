// Package workflow is the approval engine: it resolves the stage chain for a
// request, decides and applies transitions, gates them by actor authority and
// seals every accepted transition into a hash-chained event trail.
//
// Decide, Apply, ResolveChain and CanAct are pure. Engine adds per-request
// serialization on top of a Store.
package workflow

import (
	"slices"
	"time"
)

type Kind string

const (
	KindLeaveRequest      Kind = "LEAVE_REQUEST"
	KindLeaveSchedule     Kind = "LEAVE_SCHEDULE"
	KindResignation       Kind = "RESIGNATION"
	KindBusinessTrip      Kind = "BUSINESS_TRIP"
	KindHandover          Kind = "HANDOVER"
	KindPerformanceReview Kind = "PERFORMANCE_REVIEW"
	KindProbationReview   Kind = "PROBATION_REVIEW"
)

var kinds = map[Kind]bool{
	KindLeaveRequest:      true,
	KindLeaveSchedule:     true,
	KindResignation:       true,
	KindBusinessTrip:      true,
	KindHandover:          true,
	KindPerformanceReview: true,
	KindProbationReview:   true,
}

func (k Kind) IsValid() bool { return kinds[k] }

// IsSchedule reports whether the kind carries a bounded edit quota.
func (k Kind) IsSchedule() bool { return k == KindLeaveSchedule }

type Role string

const (
	RoleSelf               Role = "SELF"
	RoleLineManager        Role = "LINE_MANAGER"
	RoleAdditionalApprover Role = "ADDITIONAL_APPROVER"
	RoleHR                 Role = "HR"
	RoleManager            Role = "MANAGER"

	// recorded on events only
	RoleRequester Role = "REQUESTER"
	RoleAdmin     Role = "ADMIN"
)

type Action string

const (
	ActionSubmit               Action = "SUBMIT"
	ActionApprove              Action = "APPROVE"
	ActionReject               Action = "REJECT"
	ActionRequestClarification Action = "REQUEST_CLARIFICATION"
	ActionResubmit             Action = "RESUBMIT"
	ActionCancel               Action = "CANCEL"
	ActionEdit                 Action = "EDIT"
)

type Status string

const (
	StatusDraft                  Status = "DRAFT"
	StatusPending                Status = "PENDING"
	StatusClarificationRequested Status = "CLARIFICATION_REQUESTED"
	StatusApproved               Status = "APPROVED"
	StatusRejected               Status = "REJECTED"
	StatusCancelled              Status = "CANCELLED"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

type Semantics string

const (
	SemanticsSequential    Semantics = "SEQUENTIAL"
	SemanticsParallelMerge Semantics = "PARALLEL_MERGE"
)

type StageSpec struct {
	Role     Role `json:"role"`
	Required bool `json:"required"`
}

type StageResolution struct {
	Semantics Semantics   `json:"semantics"`
	Stages    []StageSpec `json:"stages"`
}

// Equal reports whether both resolutions route through the same stages.
func (r StageResolution) Equal(o StageResolution) bool {
	return r.Semantics == o.Semantics && slices.Equal(r.Stages, o.Stages)
}

func (r StageResolution) Roles() []Role {
	out := make([]Role, len(r.Stages))
	for i, s := range r.Stages {
		out[i] = s.Role
	}
	return out
}

// State is everything the event log determines. Replaying the log from the
// zero State (with Status DRAFT) must reproduce it exactly.
type State struct {
	Status       Status `json:"status"`
	CurrentStage int    `json:"current_stage"`
	// Completed is a bitmask of stages whose actor has approved.
	Completed uint64 `json:"completed"`
	EditCount int    `json:"edit_count"`
}

func InitialState() State {
	return State{Status: StatusDraft}
}

func (s State) StageDone(i int) bool {
	return s.Completed&(1<<uint(i)) != 0
}

type Request struct {
	ID     string
	Tenant string
	// Reference is the human-facing number, e.g. APR-000042.
	Reference          string
	Kind               Kind
	SubjectID          string
	RequesterID        string
	LineManagerID      string
	OriginJurisdiction string
	Magnitude          int
	MaxAllowedEdits    int

	StartDate     *time.Time
	EndDate       *time.Time
	EffectiveDate *time.Time
	CreatedAt     time.Time

	State      State
	Resolution StageResolution
	Version    int64
}

// Actor is the caller of a transition, as resolved by the employee directory.
type Actor struct {
	ID      string
	IsAdmin bool
	IsHR    bool
	// Jurisdictions this actor acts as additional approver for.
	AdditionalApproverFor []string
}

type Event struct {
	RequestID  string    `json:"request_id"`
	Seq        int       `json:"seq"`
	StageIndex int       `json:"stage_index"`
	ActorID    string    `json:"actor_id"`
	ActorRole  Role      `json:"actor_role"`
	Action     Action    `json:"action"`
	Comment    string    `json:"comment"`
	Timestamp  time.Time `json:"timestamp"`
	PrevHash   string    `json:"prev_hash"`
	Hash       string    `json:"hash"`
}
