package workflow

import (
	"strings"
	"time"

	workflowerrors "go-hrflow/internal/workflow/errors"
)

// Decision is the outcome of an accepted transition: the event to append
// and the request as it looks after applying it.
type Decision struct {
	Event   Event
	Request Request
}

// Decide validates a transition and returns the resulting event and request
// without touching req. Checks run in a fixed order: current state, actor
// authority, edit quota, then input validation.
func Decide(req Request, actor Actor, action Action, comment string, now time.Time) (Decision, error) {
	if !allowedFrom(req.State.Status, action) {
		if !isKnownAction(action) {
			return Decision{}, workflowerrors.ErrUnknownAction
		}
		return Decision{}, workflowerrors.InvalidState(string(req.State.Status), strings.ToLower(string(action)))
	}

	next := req
	if action == ActionSubmit {
		res, err := ResolveChain(req.Kind, req.OriginJurisdiction, req.Magnitude)
		if err != nil {
			return Decision{}, err
		}
		next.Resolution = res
	}

	grant, err := Authorize(actor, next, action)
	if err != nil {
		return Decision{}, err
	}

	if action == ActionEdit && req.Kind.IsSchedule() && req.State.EditCount >= req.MaxAllowedEdits {
		return Decision{}, workflowerrors.EditLimitExceeded(req.State.EditCount, req.MaxAllowedEdits)
	}

	comment = strings.TrimSpace(comment)
	switch action {
	case ActionReject:
		if comment == "" {
			return Decision{}, workflowerrors.ErrReasonRequired
		}
	case ActionRequestClarification:
		if comment == "" {
			return Decision{}, workflowerrors.ErrCommentRequired
		}
	}

	stage := grant.Stage
	if action == ActionSubmit {
		stage = firstOpenStage(next.Resolution, 0)
	}

	ev := Event{
		RequestID:  req.ID,
		StageIndex: stage,
		ActorID:    actor.ID,
		ActorRole:  grant.Role,
		Action:     action,
		Comment:    comment,
		Timestamp:  now.UTC(),
	}
	st, err := Apply(next.State, next.Resolution, ev)
	if err != nil {
		return Decision{}, err
	}
	next.State = st
	return Decision{Event: ev, Request: next}, nil
}

// Apply folds one event into state. It checks the event is structurally
// possible but not who sent it; authority is Decide's job.
func Apply(state State, res StageResolution, ev Event) (State, error) {
	if !allowedFrom(state.Status, ev.Action) {
		if !isKnownAction(ev.Action) {
			return state, workflowerrors.ErrUnknownAction
		}
		return state, workflowerrors.InvalidState(string(state.Status), strings.ToLower(string(ev.Action)))
	}

	next := state
	switch ev.Action {
	case ActionSubmit:
		if err := res.Validate(); err != nil {
			return state, err
		}
		if ev.StageIndex != firstOpenStage(res, 0) {
			return state, workflowerrors.ErrStageIndexMismatch
		}
		next.Status = StatusPending
		next.CurrentStage = ev.StageIndex
		next.Completed = 0

	case ActionApprove:
		idx := ev.StageIndex
		if idx < 0 || idx >= len(res.Stages) || state.StageDone(idx) {
			return state, workflowerrors.ErrStageIndexMismatch
		}
		if res.Semantics == SemanticsSequential && idx != state.CurrentStage {
			return state, workflowerrors.ErrStageIndexMismatch
		}
		next.Completed = state.Completed | 1<<uint(idx)

		var open int
		if res.Semantics == SemanticsParallelMerge {
			open = firstOpenStageIn(res, next)
		} else {
			open = firstOpenStage(res, idx+1)
		}
		if open < 0 {
			next.Status = StatusApproved
			next.CurrentStage = idx
		} else {
			next.CurrentStage = open
		}

	case ActionReject:
		next.Status = StatusRejected

	case ActionRequestClarification:
		next.Status = StatusClarificationRequested

	case ActionResubmit:
		next.Status = StatusPending

	case ActionCancel:
		next.Status = StatusCancelled

	case ActionEdit:
		next.EditCount = state.EditCount + 1
	}
	return next, nil
}

func allowedFrom(status Status, action Action) bool {
	switch action {
	case ActionSubmit:
		return status == StatusDraft
	case ActionApprove, ActionRequestClarification:
		return status == StatusPending
	case ActionReject:
		return status == StatusPending || status == StatusClarificationRequested
	case ActionResubmit:
		return status == StatusClarificationRequested
	case ActionCancel:
		return !status.IsTerminal()
	case ActionEdit:
		return status == StatusDraft || status == StatusClarificationRequested
	default:
		return false
	}
}

func isKnownAction(a Action) bool {
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionRequestClarification,
		ActionResubmit, ActionCancel, ActionEdit:
		return true
	}
	return false
}

// firstOpenStage is the first required stage at or after from, or -1.
// Stages not marked required are skipped.
func firstOpenStage(res StageResolution, from int) int {
	for i := from; i < len(res.Stages); i++ {
		if res.Stages[i].Required {
			return i
		}
	}
	return -1
}

// firstOpenStageIn is the first required stage not yet completed, or -1.
func firstOpenStageIn(res StageResolution, st State) int {
	for i, s := range res.Stages {
		if s.Required && !st.StageDone(i) {
			return i
		}
	}
	return -1
}

// PendingRoles lists the roles whose approval is awaited, in stage order.
// It is empty unless the request is pending.
func PendingRoles(req Request) []Role {
	st := req.State
	if st.Status != StatusPending {
		return nil
	}
	res := req.Resolution
	if res.Semantics == SemanticsParallelMerge {
		var open []Role
		for i, s := range res.Stages {
			if s.Required && !st.StageDone(i) {
				open = append(open, s.Role)
			}
		}
		return open
	}
	if st.CurrentStage < 0 || st.CurrentStage >= len(res.Stages) {
		return nil
	}
	return []Role{res.Stages[st.CurrentStage].Role}
}

// Label is the human-facing status, e.g. PENDING_LINE_MANAGER.
func Label(req Request) string {
	if req.State.Status != StatusPending {
		return string(req.State.Status)
	}
	switch open := PendingRoles(req); len(open) {
	case 0:
		return string(StatusPending)
	case 1:
		return "PENDING_" + roleLabel(open[0])
	default:
		return "PENDING_ASSESSMENTS"
	}
}

func roleLabel(r Role) string {
	if r == RoleAdditionalApprover {
		return "ADDITIONAL"
	}
	return string(r)
}
