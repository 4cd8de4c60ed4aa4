package workflow

import (
	"fmt"
	"strings"

	workflowerrors "go-hrflow/internal/workflow/errors"
)

// Permission is the name reported when an actor is denied.
func Permission(action Action, role Role) string {
	if role == "" {
		return fmt.Sprintf("approval:%s", strings.ToLower(string(action)))
	}
	return fmt.Sprintf("approval:%s:%s", strings.ToLower(string(action)), role)
}

// BoundTo reports whether actor holds role for this specific request.
func BoundTo(actor Actor, role Role, req Request) bool {
	if actor.ID == "" {
		return false
	}
	switch role {
	case RoleSelf:
		return actor.ID == req.SubjectID
	case RoleLineManager, RoleManager:
		return req.LineManagerID != "" && actor.ID == req.LineManagerID
	case RoleAdditionalApprover:
		for _, j := range actor.AdditionalApproverFor {
			if strings.EqualFold(j, req.OriginJurisdiction) {
				return true
			}
		}
		return false
	case RoleHR:
		return actor.IsHR
	case RoleRequester:
		return actor.ID == req.RequesterID
	default:
		return false
	}
}

// Involved reports whether actor has any standing on req.
func Involved(actor Actor, req Request) bool {
	if actor.ID == "" {
		return false
	}
	if actor.IsAdmin || actor.ID == req.RequesterID || actor.ID == req.SubjectID {
		return true
	}
	for _, s := range req.Resolution.Stages {
		if BoundTo(actor, s.Role, req) {
			return true
		}
	}
	return false
}

// Grant is the capacity in which an authorized actor acts.
type Grant struct {
	Role  Role
	Stage int
}

// CanAct is the boolean form of Authorize.
func CanAct(actor Actor, req Request, action Action) bool {
	_, err := Authorize(actor, req, action)
	return err == nil
}

// Authorize decides whether actor may perform action on req in its current
// state and returns the role the actor acts in. For stage actions on a
// parallel-merge chain the role is the first incomplete stage the actor is
// bound to.
//
// Rules in priority order: admins may do anything; approve, reject and
// clarification need the role bound to the pending stage; resubmit needs the
// original requester; cancel needs the requester; submit and edit need the
// requester.
func Authorize(actor Actor, req Request, action Action) (Grant, error) {
	switch action {
	case ActionApprove, ActionReject, ActionRequestClarification:
		if idx, ok := stageFor(actor, req); ok {
			return Grant{Role: req.Resolution.Stages[idx].Role, Stage: idx}, nil
		}
		if idx, ok := openStage(req); ok && actor.IsAdmin {
			return Grant{Role: RoleAdmin, Stage: idx}, nil
		}
		return Grant{}, workflowerrors.Unauthorized(Permission(action, pendingRole(req)))
	case ActionSubmit, ActionResubmit, ActionCancel, ActionEdit:
		stage := req.State.CurrentStage
		if BoundTo(actor, RoleRequester, req) {
			return Grant{Role: RoleRequester, Stage: stage}, nil
		}
		if actor.IsAdmin {
			return Grant{Role: RoleAdmin, Stage: stage}, nil
		}
		return Grant{}, workflowerrors.Unauthorized(Permission(action, RoleRequester))
	default:
		return Grant{}, workflowerrors.ErrUnknownAction
	}
}

// stageFor finds the stage the actor would act on.
func stageFor(actor Actor, req Request) (int, bool) {
	stages := req.Resolution.Stages
	if len(stages) == 0 {
		return 0, false
	}
	if req.Resolution.Semantics == SemanticsParallelMerge {
		for i, s := range stages {
			if req.State.StageDone(i) {
				continue
			}
			if BoundTo(actor, s.Role, req) {
				return i, true
			}
		}
		return 0, false
	}
	cur := req.State.CurrentStage
	if cur < 0 || cur >= len(stages) {
		return 0, false
	}
	return cur, BoundTo(actor, stages[cur].Role, req)
}

// openStage is the stage an admin acts on: the current stage, or for
// parallel-merge the first incomplete one.
func openStage(req Request) (int, bool) {
	stages := req.Resolution.Stages
	if req.Resolution.Semantics == SemanticsParallelMerge {
		for i := range stages {
			if !req.State.StageDone(i) {
				return i, true
			}
		}
		return 0, false
	}
	cur := req.State.CurrentStage
	return cur, cur >= 0 && cur < len(stages)
}

func pendingRole(req Request) Role {
	stages := req.Resolution.Stages
	cur := req.State.CurrentStage
	if cur >= 0 && cur < len(stages) {
		return stages[cur].Role
	}
	return ""
}
